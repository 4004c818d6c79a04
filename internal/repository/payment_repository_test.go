package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepoCreatePendingTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepo(db)

	tx := beginTx(t, db, mock)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments (vehicle_id) VALUES (?)`)).
		WithArgs("12가3456").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreatePendingTx(context.Background(), tx, "12가3456")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepoMarkPaidTx(t *testing.T) {
	t.Run("pending row transitions", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepo(db)

		tx := beginTx(t, db, mock)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments SET paid_at = UTC_TIMESTAMP() WHERE vehicle_id = ? AND paid_at IS NULL`)).
			WithArgs("12가3456").
			WillReturnResult(sqlmock.NewResult(0, 1))

		transitioned, err := repo.MarkPaidTx(context.Background(), tx, "12가3456")
		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already paid does not re-fire", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepo(db)

		tx := beginTx(t, db, mock)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments SET paid_at = UTC_TIMESTAMP() WHERE vehicle_id = ? AND paid_at IS NULL`)).
			WithArgs("12가3456").
			WillReturnResult(sqlmock.NewResult(0, 0))

		transitioned, err := repo.MarkPaidTx(context.Background(), tx, "12가3456")
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepoGetLatestByVehicle(t *testing.T) {
	t.Run("returns the newest record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepo(db)
		created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
		paid := created.Add(45 * time.Minute)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, created_at, paid_at FROM payments WHERE vehicle_id = ? ORDER BY id DESC LIMIT 1`)).
			WithArgs("12가3456").
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "created_at", "paid_at"}).
				AddRow(3, "12가3456", created, paid))

		rec, err := repo.GetLatestByVehicle(context.Background(), "12가3456")
		require.NoError(t, err)
		require.NotNil(t, rec.PaidAt)
		assert.Equal(t, paid, *rec.PaidAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no record maps to sentinel", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, created_at, paid_at FROM payments WHERE vehicle_id = ? ORDER BY id DESC LIMIT 1`)).
			WithArgs("99허9999").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetLatestByVehicle(context.Background(), "99허9999")
		assert.ErrorIs(t, err, ErrPaymentNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
