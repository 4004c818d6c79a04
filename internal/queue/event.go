// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentCompletedEvent is delivered on the payment.completed queue
// whenever a payment record's pay-date transitions from unset to set.
// The payment collaborator publishes it exactly once per transition;
// consuming it releases the vehicle's occupancy entry.  Processing is
// idempotent, so a redundant delivery for an already-released vehicle
// is a harmless no-op.
type PaymentCompletedEvent struct {
	VehicleID string `json:"vehicle_id"`
	PaidAt    string `json:"paid_at"`
	Source    string `json:"source,omitempty"`
}
