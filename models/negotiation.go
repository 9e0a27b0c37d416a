package models

import "time"

// Negotiation statuses. Proposed is the only non-terminal state.
const (
	NegotiationProposed = "proposed"
	NegotiationAccepted = "accepted"
	NegotiationRejected = "rejected"
	NegotiationExpired  = "expired"
)

// NegotiationRequest is a proposed time change offered to an already-booked
// customer to free up a chef/slot for a new request.
type NegotiationRequest struct {
	ID           string     `json:"id"`
	BookingID    string     `json:"booking_id"`
	CustomerID   string     `json:"customer_id"`
	ProposedTime time.Time  `json:"proposed_time"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// Terminal reports whether the negotiation has reached a final state.
func (n NegotiationRequest) Terminal() bool {
	return n.Status != NegotiationProposed
}

// NegotiationExpiryPayload is the asynq task payload scheduled for the
// negotiation deadline.
type NegotiationExpiryPayload struct {
	NegotiationID string `json:"negotiationId"`
}
