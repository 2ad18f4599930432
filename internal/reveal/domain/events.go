package domain

import (
	"time"
)

// Outbox event types emitted by transitions.
const (
	EventRevealRequestCreated         = "reveal_request.created"
	EventRevealRequestApproved        = "reveal_request.approved"
	EventRevealRequestRefundRequested = "reveal_request.refund_requested"
	EventRevealRequestExpired         = "reveal_request.expired"
)

// EventPayload is the body of every reveal request event. It never carries
// contact data or the access token.
type EventPayload struct {
	RequestID      string    `json:"request_id"`
	ServiceID      string    `json:"service_id"`
	ClientID       string    `json:"client_id"`
	ProviderID     string    `json:"provider_id"`
	Status         Status    `json:"status"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
	PaymentRef     string    `json:"payment_ref"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// NewEventPayload captures r after a transition from previous.
func NewEventPayload(r *RevealRequest, previous Status) EventPayload {
	return EventPayload{
		RequestID:      r.ID.String(),
		ServiceID:      r.ServiceID,
		ClientID:       r.ClientID,
		ProviderID:     r.ProviderID,
		Status:         r.Status,
		PreviousStatus: previous,
		PaymentRef:     r.PaymentRef,
		ExpiresAt:      r.ExpiresAt,
	}
}
