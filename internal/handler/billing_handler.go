package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/service"
)

// BillingHandler exposes subscription checkout.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs a handler instance.
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// CreateCheckoutSession handles POST /api/billing/checkout.
func (h *BillingHandler) CreateCheckoutSession(c echo.Context) error {
	var req dto.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.billing.CreateCheckoutSession(c.Request().Context(), userID, req)
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return Error(c, http.StatusBadRequest, validation.Message)
		case errors.Is(err, service.ErrBillingUnavailable):
			return Error(c, http.StatusServiceUnavailable, "billing is not configured")
		default:
			return internalError(c, err)
		}
	}
	return Success(c, http.StatusOK, "checkout session created", session)
}
