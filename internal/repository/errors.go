// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSessionNotFound indicates that a referenced parking
// session does not exist, while ErrAlreadyCheckedOut signals that a
// check-out was attempted on a session whose exit time is already
// stamped.
package repository

import "errors"

// ErrSessionNotFound is returned when no parking event exists for the
// requested session ID. Handlers should translate this into an HTTP
// 404 response.
var ErrSessionNotFound = errors.New("session not found")

// ErrAlreadyCheckedOut is returned when check-out is invoked a second
// time on the same session. Exit times are stamped exactly once; a
// repeated check-out does not silently overwrite the earlier
// timestamp. Handlers should translate this into an HTTP 409 response.
var ErrAlreadyCheckedOut = errors.New("session already checked out")

// ErrVehicleAlreadyParked is returned when a check-in is attempted for
// a vehicle that still has an occupancy entry. The occupancy table
// allows at most one entry per vehicle, so a vehicle cannot enter
// again before its previous session's payment released the entry.
var ErrVehicleAlreadyParked = errors.New("vehicle already parked")

// ErrPaymentNotPending is returned when a payment completion is
// requested for a vehicle that has no pending (unpaid) payment row.
// The pay-date transition from unset to set can only happen once.
var ErrPaymentNotPending = errors.New("no pending payment for vehicle")

// ErrConsistency is returned when an internal invariant is found
// broken, such as more than one occupancy entry for a single vehicle.
// It must never be masked or auto-corrected; the operation aborts and
// the condition is surfaced to the operator.
var ErrConsistency = errors.New("occupancy consistency violation")
