package model

import "time"

// ParkingEvent is the durable ledger row for one physical parking
// session.  A row is created when the vehicle passes the entry
// barrier and is mutated exactly once when the exit time is stamped
// at check-out.  Rows are never deleted; they form the historical
// record of the facility.
//
// Fields:
//  SessionID – primary key identifier of the session.
//  VehicleID – licence plate of the vehicle; the same plate may
//              appear in many rows over its history.
//  BarrierID – barrier the vehicle entered through.
//  EntryTime – timestamp of check-in, immutable after insert.
//  ExitTime  – timestamp of check-out; nil while the vehicle has
//              not been checked out.
type ParkingEvent struct {
	SessionID uint64     `json:"session_id"` // parking_events.id
	VehicleID string     `json:"vehicle_id"` // parking_events.vehicle_id
	BarrierID string     `json:"barrier_id"` // parking_events.barrier_id
	EntryTime time.Time  `json:"entry_time"` // parking_events.entry_time
	ExitTime  *time.Time `json:"exit_time"`  // parking_events.exit_time (nullable)
}
