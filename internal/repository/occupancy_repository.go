package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-occupancy-service/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number raised when an insert
// violates a unique key.
const mysqlDuplicateEntry = 1062

// OccupancyRepo provides data access to the occupancy table, the hot
// mirror of vehicles currently inside the facility.  Rows are created
// in the same transaction as the check-in ledger write and deleted
// only when payment for the vehicle completes.  The vehicle_id column
// carries a unique key as the storage-level backstop for the
// one-entry-per-vehicle invariant.
type OccupancyRepo struct {
	db *sql.DB
}

// NewOccupancyRepo returns a new OccupancyRepo bound to the provided database.
func NewOccupancyRepo(db *sql.DB) *OccupancyRepo { return &OccupancyRepo{db: db} }

// InsertTx creates the occupancy entry for a freshly checked-in
// vehicle within the provided transaction.  When the vehicle already
// has an entry, the unique key on vehicle_id rejects the insert and
// ErrVehicleAlreadyParked is returned so the whole check-in rolls
// back.  The caller must commit or rollback the transaction.
func (r *OccupancyRepo) InsertTx(ctx context.Context, tx *sql.Tx, vehicleID, barrierID string) error {
	const q = `INSERT INTO occupancy (vehicle_id, barrier_id) VALUES (?, ?)`
	_, err := tx.ExecContext(ctx, q, vehicleID, barrierID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrVehicleAlreadyParked
		}
		return err
	}
	return nil
}

// LockByVehicleTx locks and counts the occupancy entries for a vehicle
// with SELECT ... FOR UPDATE.  Taking the row lock serializes
// concurrent operations on the same vehicle (for example a payment
// completion racing a redundant signal) without blocking operations on
// other vehicles.  A count of zero simply means the vehicle is not
// currently tracked as occupied.
func (r *OccupancyRepo) LockByVehicleTx(ctx context.Context, tx *sql.Tx, vehicleID string) (int, error) {
	const q = `SELECT COUNT(*) FROM occupancy WHERE vehicle_id = ? FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, vehicleID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByVehicleTx removes all occupancy entries for the given
// vehicle within the provided transaction and returns the number of
// rows removed.  Removing zero rows is not an error: payment may
// complete for a vehicle whose entry was already released by an
// earlier signal.
func (r *OccupancyRepo) DeleteByVehicleTx(ctx context.Context, tx *sql.Tx, vehicleID string) (int64, error) {
	const q = `DELETE FROM occupancy WHERE vehicle_id = ?`
	result, err := tx.ExecContext(ctx, q, vehicleID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListCurrent returns the occupancy entries whose vehicle_id ends with
// the given suffix, supporting partial-plate lookups at the exit
// terminals.  An empty suffix returns every current occupant.
func (r *OccupancyRepo) ListCurrent(ctx context.Context, vehicleSuffix string) ([]model.OccupancyEntry, error) {
	const q = `SELECT id, vehicle_id, barrier_id, created_at FROM occupancy WHERE vehicle_id LIKE ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, "%"+vehicleSuffix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OccupancyEntry, 0)
	for rows.Next() {
		var e model.OccupancyEntry
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.BarrierID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
