package dto

// CheckoutSessionRequest asks for a hosted payment page for a price.
type CheckoutSessionRequest struct {
	PriceID    string `json:"price_id"`
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// CheckoutSessionResponse carries the redirect URL for the hosted page.
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}
