package model

import "time"

// PaymentRecord tracks the payment owed for a parking session.  A
// pending row (PaidAt nil) is created at check-in; completing the
// payment flips PaidAt from unset to set exactly once.  That single
// transition is what releases the vehicle's occupancy entry — the
// rest of the payment workflow lives outside this service.
//
// Fields:
//  ID        – primary key identifier.
//  VehicleID – vehicle the payment belongs to.
//  CreatedAt – timestamp when the pending row was created.
//  PaidAt    – timestamp of payment completion; nil while unpaid.
type PaymentRecord struct {
	ID        uint64     `json:"id"`         // payments.id
	VehicleID string     `json:"vehicle_id"` // payments.vehicle_id
	CreatedAt time.Time  `json:"created_at"` // payments.created_at
	PaidAt    *time.Time `json:"paid_at"`    // payments.paid_at (nullable)
}
