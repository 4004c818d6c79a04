// Package service contains the lifecycle coordinator, the orchestration
// layer tying the parking ledger, the occupancy tracker and the fee
// calculator together.  Each public operation runs inside a single
// database transaction so that a ledger write and its dependent
// occupancy effect are never observably split.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-occupancy-service/internal/fee"
	"github.com/iliyamo/parking-occupancy-service/internal/model"
	"github.com/iliyamo/parking-occupancy-service/internal/repository"
)

// ErrIncompleteSession is returned when a fee quote is requested for a
// session whose exit time has not been recorded yet.
var ErrIncompleteSession = errors.New("session has no exit time yet")

// readRetryAttempts bounds the automatic retry of idempotent reads on
// transient storage failures.  Writes are never retried automatically:
// a retried check-in could produce a duplicate session.
const readRetryAttempts = 3

// Lifecycle coordinates check-in, check-out, occupant search, payment
// completion and fee quoting.  The occupancy table is mutated only
// here, in the same transaction as the triggering write — the Go
// rendition of what the storage engine's triggers used to do.
type Lifecycle struct {
	db        *sql.DB
	events    *repository.ParkingEventRepo
	occupancy *repository.OccupancyRepo
	payments  *repository.PaymentRepo
	policy    fee.Policy
}

// NewLifecycle constructs a Lifecycle coordinator.  All repositories
// must be bound to the same database handle; the coordinator opens
// transactions on db and passes them down.
func NewLifecycle(db *sql.DB, events *repository.ParkingEventRepo, occupancy *repository.OccupancyRepo, payments *repository.PaymentRepo, policy fee.Policy) *Lifecycle {
	if db == nil || events == nil || occupancy == nil || payments == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{db: db, events: events, occupancy: occupancy, payments: payments, policy: policy}
}

// Policy returns the fee policy the coordinator quotes with.
func (l *Lifecycle) Policy() fee.Policy { return l.policy }

// CheckIn records a vehicle entering the facility.  Within one
// transaction it appends the parking event, inserts the occupancy
// entry and creates the pending payment row; a check-in that could not
// produce its occupancy entry rolls back entirely.  It returns
// repository.ErrVehicleAlreadyParked when the vehicle is already
// tracked as occupied.
func (l *Lifecycle) CheckIn(ctx context.Context, vehicleID, barrierID string) (*model.ParkingEvent, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ev, err := l.events.CreateTx(ctx, tx, vehicleID, barrierID)
	if err != nil {
		return nil, err
	}
	if err := l.occupancy.InsertTx(ctx, tx, vehicleID, barrierID); err != nil {
		return nil, err
	}
	if err := l.payments.CreatePendingTx(ctx, tx, vehicleID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ev, nil
}

// SearchOccupants returns the currently-occupied vehicles whose plate
// ends with the given suffix, together with their open session.  As an
// idempotent read it is retried with bounded backoff on transient
// storage failures.
func (l *Lifecycle) SearchOccupants(ctx context.Context, plateSuffix string) ([]repository.OpenSession, error) {
	var out []repository.OpenSession
	err := l.withReadRetry(ctx, func() error {
		var err error
		out, err = l.events.ListOpenSessionsMatching(ctx, plateSuffix)
		return err
	})
	return out, err
}

// CurrentOccupants returns the occupancy entries matching the given
// plate suffix (empty suffix returns all occupants).
func (l *Lifecycle) CurrentOccupants(ctx context.Context, plateSuffix string) ([]model.OccupancyEntry, error) {
	var out []model.OccupancyEntry
	err := l.withReadRetry(ctx, func() error {
		var err error
		out, err = l.occupancy.ListCurrent(ctx, plateSuffix)
		return err
	})
	return out, err
}

// CheckOut stamps the exit time on the identified session.  It does
// not touch occupancy: the entry is released only when payment
// completes, even though the vehicle has physically left.  A second
// check-out of the same session fails with
// repository.ErrAlreadyCheckedOut.
func (l *Lifecycle) CheckOut(ctx context.Context, sessionID uint64) (*model.ParkingEvent, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ev, err := l.events.CheckOutTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ev, nil
}

// OnPaymentCompleted releases the vehicle's occupancy entry in
// reaction to a payment-completion signal.  The occupancy rows are
// locked first so that concurrent signals for the same vehicle
// serialize; finding more than one row is a consistency violation and
// aborts the operation.  Finding zero rows is a no-op — payment may
// complete for a vehicle whose entry was already released.  The local
// payment row, when still pending, is marked paid in the same
// transaction so redundant signals stay idempotent.
func (l *Lifecycle) OnPaymentCompleted(ctx context.Context, vehicleID string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	n, err := l.occupancy.LockByVehicleTx(ctx, tx, vehicleID)
	if err != nil {
		return err
	}
	if n > 1 {
		return repository.ErrConsistency
	}
	if _, err := l.payments.MarkPaidTx(ctx, tx, vehicleID); err != nil {
		return err
	}
	if n > 0 {
		if _, err := l.occupancy.DeleteByVehicleTx(ctx, tx, vehicleID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CompletePayment is the in-process payment collaborator: it flips the
// vehicle's pending payment to paid and releases the occupancy entry
// in one transaction.  It returns repository.ErrPaymentNotPending when
// the vehicle has no unpaid payment row, so a pay-date that is already
// set can never fire the release a second time.
func (l *Lifecycle) CompletePayment(ctx context.Context, vehicleID string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	n, err := l.occupancy.LockByVehicleTx(ctx, tx, vehicleID)
	if err != nil {
		return err
	}
	if n > 1 {
		return repository.ErrConsistency
	}
	transitioned, err := l.payments.MarkPaidTx(ctx, tx, vehicleID)
	if err != nil {
		return err
	}
	if !transitioned {
		return repository.ErrPaymentNotPending
	}
	if n > 0 {
		if _, err := l.occupancy.DeleteByVehicleTx(ctx, tx, vehicleID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// QuoteFee computes the amount owed for a completed session.  It
// returns repository.ErrSessionNotFound for unknown sessions,
// ErrIncompleteSession when the exit time has not been stamped yet and
// fee.ErrInvalidInterval when the stored interval is negative.
func (l *Lifecycle) QuoteFee(ctx context.Context, sessionID uint64) (int64, *model.ParkingEvent, error) {
	var ev *model.ParkingEvent
	err := l.withReadRetry(ctx, func() error {
		var err error
		ev, err = l.events.GetByID(ctx, sessionID)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	if ev.ExitTime == nil {
		return 0, nil, ErrIncompleteSession
	}
	amount, err := l.policy.Quote(ev.EntryTime, *ev.ExitTime)
	if err != nil {
		return 0, nil, err
	}
	return amount, ev, nil
}

// withReadRetry runs fn up to readRetryAttempts times, backing off
// between attempts.  Expected domain conditions and context
// cancellation are returned immediately; only transient storage
// failures are retried.
func (l *Lifecycle) withReadRetry(ctx context.Context, fn func() error) error {
	backoff := 100 * time.Millisecond
	var err error
	for attempt := 0; attempt < readRetryAttempts; attempt++ {
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// retryable reports whether an error is worth retrying: anything that
// is not one of the expected domain sentinels or a cancelled context
// is treated as a transient storage failure.
func retryable(err error) bool {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrAlreadyCheckedOut),
		errors.Is(err, repository.ErrVehicleAlreadyParked),
		errors.Is(err, repository.ErrPaymentNotPending),
		errors.Is(err, repository.ErrConsistency),
		errors.Is(err, ErrIncompleteSession),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
