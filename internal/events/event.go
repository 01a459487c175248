package events

import (
	"time"

	"github.com/google/uuid"
)

const EventSessionCreated = "checkout.session.created"

// SessionCreated is emitted after the payment provider accepted a checkout session.
type SessionCreated struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	Color       string    `json:"color"`
	Quantity    int       `json:"quantity"`
	AmountTotal int64     `json:"amount_total"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewSessionCreated(sessionID, color string, quantity int, amountTotal int64, currency string, at time.Time) SessionCreated {
	return SessionCreated{
		EventID:     uuid.NewString(),
		SessionID:   sessionID,
		Color:       color,
		Quantity:    quantity,
		AmountTotal: amountTotal,
		Currency:    currency,
		CreatedAt:   at.UTC(),
	}
}
