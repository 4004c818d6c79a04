package model

import "time"

// OccupancyEntry marks a vehicle as currently inside the facility.
// There is at most one entry per vehicle at any time; the table is a
// hot mirror of "who is parked right now" while parking_events keeps
// the cold history.  Entries are inserted in the same transaction as
// the check-in write and removed only when payment for the vehicle
// completes — never by check-out and never by a timer.
//
// Fields:
//  ID        – primary key identifier.
//  VehicleID – the occupant's licence plate (unique).
//  BarrierID – barrier the vehicle entered through.
//  CreatedAt – timestamp when the entry was created.
type OccupancyEntry struct {
	ID        uint64    `json:"id"`         // occupancy.id
	VehicleID string    `json:"vehicle_id"` // occupancy.vehicle_id
	BarrierID string    `json:"barrier_id"` // occupancy.barrier_id
	CreatedAt time.Time `json:"created_at"` // occupancy.created_at
}
