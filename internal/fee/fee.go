// Package fee computes parking fees from entry and exit timestamps.
// The calculation is pure: no storage access, no clock reads, no side
// effects.  Policy values come from deployment configuration and never
// vary per call.
package fee

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when the exit timestamp precedes the
// entry timestamp.
var ErrInvalidInterval = errors.New("exit time precedes entry time")

// Policy holds the tiered billing parameters for a facility.
//
//  GraceMinutes – initial minutes of parking that are not charged.
//  UnitMinutes  – size of one billable unit; time past the grace
//                 period is rounded down to whole units.
//  UnitRate     – charge per billable unit, in the facility's
//                 configured currency unit.
type Policy struct {
	GraceMinutes int
	UnitMinutes  int
	UnitRate     int64
}

// DefaultPolicy is the facility default: 15 grace minutes, then 1500
// per started-and-completed 10-minute unit.
var DefaultPolicy = Policy{GraceMinutes: 15, UnitMinutes: 10, UnitRate: 1500}

// Quote returns the amount owed for the interval [entry, exit].
// Elapsed whole minutes beyond the grace period are divided into full
// units; a fraction beyond the last full unit is not charged (floor,
// not ceiling).  Staying within the grace period costs nothing.
// Quote fails with ErrInvalidInterval when exit precedes entry.
func (p Policy) Quote(entry, exit time.Time) (int64, error) {
	if exit.Before(entry) {
		return 0, ErrInvalidInterval
	}
	elapsedMinutes := int64(exit.Sub(entry) / time.Minute)
	billableMinutes := elapsedMinutes - int64(p.GraceMinutes)
	if billableMinutes <= 0 {
		return 0, nil
	}
	billableUnits := billableMinutes / int64(p.UnitMinutes)
	return billableUnits * p.UnitRate, nil
}
