package domain

// CheckoutSessionRequest is the body of POST /api/checkout.
type CheckoutSessionRequest struct {
	Color    Color `json:"color"`
	Quantity int   `json:"quantity"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
