package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/brandforge/content-engine/api/internal/dto"
)

// ErrBillingUnavailable indicates no payment provider is configured.
var ErrBillingUnavailable = errors.New("billing is not configured")

// checkoutCreator abstracts the Stripe call to simplify testing.
type checkoutCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

// BillingService creates hosted checkout pages for subscriptions.
type BillingService struct {
	create     checkoutCreator
	successURL string
	cancelURL  string
	enabled    bool
}

// NewBillingService configures Stripe with the given secret key. An empty
// key disables billing endpoints.
func NewBillingService(secretKey, successURL, cancelURL string) *BillingService {
	enabled := strings.TrimSpace(secretKey) != ""
	if enabled {
		stripe.Key = secretKey
	}
	return &BillingService{
		create:     checkoutsession.New,
		successURL: successURL,
		cancelURL:  cancelURL,
		enabled:    enabled,
	}
}

// CreateCheckoutSession returns the redirect URL for a hosted payment page.
// The user id travels as the client reference so the completed purchase can
// be attributed on the Stripe side.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	if !s.enabled {
		return nil, ErrBillingUnavailable
	}
	if strings.TrimSpace(req.PriceID) == "" {
		return nil, ValidationError{Message: "price_id is required"}
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.successURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cancelURL
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	session, err := s.create(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &dto.CheckoutSessionResponse{URL: session.URL}, nil
}
