package repository

import (
	"context"
	"time"
)

// OpenSession is one row of the partial-plate search shown at the exit
// terminal: a vehicle that is currently tracked as occupied together
// with the session it entered under.
type OpenSession struct {
	VehicleID string    `json:"vehicle_id"`
	EntryTime time.Time `json:"entry_time"`
	SessionID uint64    `json:"session_id"`
}

// ListOpenSessionsMatching returns all currently-occupied vehicles
// whose plate ends with the given suffix, joined with their most
// recent parking event.  A vehicle stays in this result after
// check-out — occupancy is released by payment completion, not by the
// exit stamp — so the join targets the latest session per vehicle
// rather than filtering on exit_time.  No ordering is guaranteed
// beyond a stable per-call result.
func (r *ParkingEventRepo) ListOpenSessionsMatching(ctx context.Context, vehicleSuffix string) ([]OpenSession, error) {
	const q = `SELECT o.vehicle_id, p.entry_time, p.id
               FROM occupancy o
               JOIN parking_events p
                 ON p.id = (SELECT MAX(p2.id) FROM parking_events p2 WHERE p2.vehicle_id = o.vehicle_id)
               WHERE o.vehicle_id LIKE ?
               ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, "%"+vehicleSuffix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]OpenSession, 0)
	for rows.Next() {
		var s OpenSession
		if err := rows.Scan(&s.VehicleID, &s.EntryTime, &s.SessionID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
