package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-occupancy-service/internal/model"
)

// ParkingEventRepo provides data access to the parking_events table,
// the append-only ledger of check-ins and check-outs.  Rows are
// inserted at check-in, mutated exactly once at check-out and never
// deleted.  All timestamp fields are stored in UTC.
type ParkingEventRepo struct {
	db *sql.DB
}

// NewParkingEventRepo returns a new ParkingEventRepo bound to the given database.
func NewParkingEventRepo(db *sql.DB) *ParkingEventRepo { return &ParkingEventRepo{db: db} }

// DB exposes the underlying handle so that callers can open
// transactions spanning several repositories.
func (r *ParkingEventRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new parking event within the scope of an existing
// transaction.  The entry time is stamped by the database so that it
// is consistent with other timestamps written in the same transaction.
// The generated session ID and the stored entry time are populated on
// the returned event.  The caller must commit or rollback the
// transaction.
func (r *ParkingEventRepo) CreateTx(ctx context.Context, tx *sql.Tx, vehicleID, barrierID string) (*model.ParkingEvent, error) {
	const q = `INSERT INTO parking_events (vehicle_id, barrier_id, entry_time) VALUES (?, ?, UTC_TIMESTAMP())`
	result, err := tx.ExecContext(ctx, q, vehicleID, barrierID)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Query back the full row to populate the database-generated entry time.
	const sel = `SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`
	ev := &model.ParkingEvent{}
	var exit sql.NullTime
	err = tx.QueryRowContext(ctx, sel, id).Scan(&ev.SessionID, &ev.VehicleID, &ev.BarrierID, &ev.EntryTime, &exit)
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		t := exit.Time
		ev.ExitTime = &t
	}
	return ev, nil
}

// GetByID loads a single parking event by its session ID.  It returns
// ErrSessionNotFound when no row exists.
func (r *ParkingEventRepo) GetByID(ctx context.Context, sessionID uint64) (*model.ParkingEvent, error) {
	const q = `SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`
	ev := &model.ParkingEvent{}
	var exit sql.NullTime
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&ev.SessionID, &ev.VehicleID, &ev.BarrierID, &ev.EntryTime, &exit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if exit.Valid {
		t := exit.Time
		ev.ExitTime = &t
	}
	return ev, nil
}

// CheckOutTx stamps the exit time on the identified session within the
// provided transaction.  The row is locked with SELECT ... FOR UPDATE
// so that concurrent check-outs of the same session serialize; the
// second caller observes the stamped exit time and receives
// ErrAlreadyCheckedOut instead of overwriting it.  It returns
// ErrSessionNotFound when the session does not exist.
func (r *ParkingEventRepo) CheckOutTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (*model.ParkingEvent, error) {
	const lockQ = `SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ? FOR UPDATE`
	ev := &model.ParkingEvent{}
	var exit sql.NullTime
	err := tx.QueryRowContext(ctx, lockQ, sessionID).Scan(&ev.SessionID, &ev.VehicleID, &ev.BarrierID, &ev.EntryTime, &exit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if exit.Valid {
		return nil, ErrAlreadyCheckedOut
	}
	const upd = `UPDATE parking_events SET exit_time = UTC_TIMESTAMP() WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, sessionID); err != nil {
		return nil, err
	}
	// Read the stamped time back so the caller sees exactly what was stored.
	var stamped time.Time
	const sel = `SELECT exit_time FROM parking_events WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, sessionID).Scan(&stamped); err != nil {
		return nil, err
	}
	ev.ExitTime = &stamped
	return ev, nil
}
