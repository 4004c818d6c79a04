package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-occupancy-service/internal/fee"
	"github.com/iliyamo/parking-occupancy-service/internal/repository"
	"github.com/iliyamo/parking-occupancy-service/internal/service"
)

// mysqlDuplicate mimics the unique-key violation raised when a vehicle
// that is already inside tries to check in again.
func mysqlDuplicate() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

func newTestHandler(t *testing.T) (*ParkingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	lc := service.NewLifecycle(db,
		repository.NewParkingEventRepo(db),
		repository.NewOccupancyRepo(db),
		repository.NewPaymentRepo(db),
		fee.DefaultPolicy,
	)
	return NewParkingHandler(lc), mock
}

func TestParkingHandlerCheckIn(t *testing.T) {
	entry := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("returns 201 with the session projection", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO parking_events (vehicle_id, barrier_id, entry_time) VALUES (?, ?, UTC_TIMESTAMP())`)).
			WithArgs("12가3456", "A").
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`)).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "barrier_id", "entry_time", "exit_time"}).
				AddRow(7, "12가3456", "A", entry, nil))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO occupancy (vehicle_id, barrier_id) VALUES (?, ?)`)).
			WithArgs("12가3456", "A").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments (vehicle_id) VALUES (?)`)).
			WithArgs("12가3456").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/parkings",
			strings.NewReader(`{"vehicle_id":"12가3456","barrier_id":"A"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.CheckIn(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"session_id":7`)
		assert.Contains(t, rec.Body.String(), `"exit_time":null`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns 409 when the vehicle is already inside", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO parking_events (vehicle_id, barrier_id, entry_time) VALUES (?, ?, UTC_TIMESTAMP())`)).
			WithArgs("12가3456", "A").
			WillReturnResult(sqlmock.NewResult(8, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`)).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "barrier_id", "entry_time", "exit_time"}).
				AddRow(8, "12가3456", "A", entry, nil))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO occupancy (vehicle_id, barrier_id) VALUES (?, ?)`)).
			WithArgs("12가3456", "A").
			WillReturnError(mysqlDuplicate())
		mock.ExpectRollback()

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/parkings",
			strings.NewReader(`{"vehicle_id":"12가3456","barrier_id":"A"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.CheckIn(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns 400 for a missing plate", func(t *testing.T) {
		h, _ := newTestHandler(t)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/parkings",
			strings.NewReader(`{"barrier_id":"A"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.CheckIn(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestParkingHandlerQuoteFee(t *testing.T) {
	entry := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("returns the amount for a completed session", func(t *testing.T) {
		h, mock := newTestHandler(t)
		exit := entry.Add(25 * time.Minute)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`)).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "barrier_id", "entry_time", "exit_time"}).
				AddRow(7, "12가3456", "A", entry, exit))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/parkings/7/fee", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("7")

		require.NoError(t, h.QuoteFee(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"amount":1500`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns 409 before check-out", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`)).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "barrier_id", "entry_time", "exit_time"}).
				AddRow(7, "12가3456", "A", entry, nil))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/parkings/7/fee", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("7")

		require.NoError(t, h.QuoteFee(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns 404 for an unknown session", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vehicle_id, barrier_id, entry_time, exit_time FROM parking_events WHERE id = ?`)).
			WithArgs(uint64(404)).
			WillReturnError(sql.ErrNoRows)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/parkings/404/fee", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("404")

		require.NoError(t, h.QuoteFee(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
