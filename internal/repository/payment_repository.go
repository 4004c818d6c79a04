package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-occupancy-service/internal/model"
)

// PaymentRepo provides data access to the payments table.  A pending
// row is inserted at check-in; the only mutation this service performs
// is the conditional flip of paid_at from NULL to a timestamp.  That
// guard makes payment completion fire at most once per record even
// when signals are redundant.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreatePendingTx inserts an unpaid payment row for the vehicle within
// the provided transaction.  It is called as part of check-in so that
// every parking session has a payment record awaiting completion.
func (r *PaymentRepo) CreatePendingTx(ctx context.Context, tx *sql.Tx, vehicleID string) error {
	const q = `INSERT INTO payments (vehicle_id) VALUES (?)`
	_, err := tx.ExecContext(ctx, q, vehicleID)
	return err
}

// MarkPaidTx sets paid_at on the vehicle's pending payment rows within
// the provided transaction.  The WHERE clause matches only rows whose
// paid_at is still NULL, so a record transitions exactly once; the
// returned flag reports whether any row actually transitioned.
func (r *PaymentRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, vehicleID string) (bool, error) {
	const q = `UPDATE payments SET paid_at = UTC_TIMESTAMP() WHERE vehicle_id = ? AND paid_at IS NULL`
	result, err := tx.ExecContext(ctx, q, vehicleID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetLatestByVehicle returns the most recent payment record for a
// vehicle, or ErrPaymentNotPending when the vehicle has none.
func (r *PaymentRepo) GetLatestByVehicle(ctx context.Context, vehicleID string) (*model.PaymentRecord, error) {
	const q = `SELECT id, vehicle_id, created_at, paid_at FROM payments WHERE vehicle_id = ? ORDER BY id DESC LIMIT 1`
	rec := &model.PaymentRecord{}
	var paid sql.NullTime
	err := r.db.QueryRowContext(ctx, q, vehicleID).Scan(&rec.ID, &rec.VehicleID, &rec.CreatedAt, &paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotPending
		}
		return nil, err
	}
	if paid.Valid {
		t := paid.Time
		rec.PaidAt = &t
	}
	return rec, nil
}
