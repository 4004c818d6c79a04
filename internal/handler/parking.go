package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-occupancy-service/internal/fee"
	"github.com/iliyamo/parking-occupancy-service/internal/repository"
	"github.com/iliyamo/parking-occupancy-service/internal/service"
)

// ParkingHandler exposes the barrier-facing operations: check-in,
// occupant search, check-out and fee quoting.  It is a thin HTTP
// translation over the lifecycle coordinator; expected domain
// conditions map to 4xx responses and are never logged as failures,
// while consistency violations surface as 500s and are logged for the
// operator.
type ParkingHandler struct {
	Lifecycle *service.Lifecycle
}

// NewParkingHandler constructs a ParkingHandler.  The lifecycle
// coordinator must be non-nil.
func NewParkingHandler(lc *service.Lifecycle) *ParkingHandler {
	if lc == nil {
		panic("nil lifecycle passed to NewParkingHandler")
	}
	return &ParkingHandler{Lifecycle: lc}
}

// CheckIn handles POST /v1/parkings.  The request body must contain a
// JSON object with "vehicle_id" and "barrier_id".  On success it
// returns 201 Created with the new session's public projection
// (exit_time is null).  A vehicle that is already inside yields 409.
func (h *ParkingHandler) CheckIn(c echo.Context) error {
	var body struct {
		VehicleID string `json:"vehicle_id"`
		BarrierID string `json:"barrier_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.VehicleID = strings.TrimSpace(body.VehicleID)
	body.BarrierID = strings.TrimSpace(body.BarrierID)
	if body.VehicleID == "" || body.BarrierID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id and barrier_id are required"})
	}
	ev, err := h.Lifecycle.CheckIn(c.Request().Context(), body.VehicleID, body.BarrierID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleAlreadyParked) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already parked"})
		}
		log.Printf("check-in failed for %s: %v", body.VehicleID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, ev)
}

// Search handles GET /v1/parkings/search?suffix=.  It returns the
// currently-occupied vehicles whose plate ends with the given suffix,
// each with the entry time and session ID of its open session.
func (h *ParkingHandler) Search(c echo.Context) error {
	suffix := strings.TrimSpace(c.QueryParam("suffix"))
	if suffix == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "suffix is required"})
	}
	sessions, err := h.Lifecycle.SearchOccupants(c.Request().Context(), suffix)
	if err != nil {
		log.Printf("occupant search failed for suffix %q: %v", suffix, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}

// Occupants handles GET /v1/occupancy.  It lists the occupancy
// entries themselves, optionally filtered by a plate suffix; with no
// suffix it returns every vehicle currently inside the facility.
func (h *ParkingHandler) Occupants(c echo.Context) error {
	suffix := strings.TrimSpace(c.QueryParam("suffix"))
	entries, err := h.Lifecycle.CurrentOccupants(c.Request().Context(), suffix)
	if err != nil {
		log.Printf("occupancy listing failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"occupants": entries})
}

// CheckOut handles POST /v1/parkings/:id/checkout.  It stamps the exit
// time on the session; the occupancy entry deliberately stays until
// payment completes.  A second check-out of the same session yields
// 409 instead of overwriting the earlier timestamp.
func (h *ParkingHandler) CheckOut(c echo.Context) error {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ev, err := h.Lifecycle.CheckOut(c.Request().Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, repository.ErrAlreadyCheckedOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session already checked out"})
		}
		log.Printf("check-out failed for session %d: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, ev)
}

// QuoteFee handles GET /v1/parkings/:id/fee.  It returns the amount
// owed for a completed session.  Sessions without an exit time yield
// 409; a stored interval with exit before entry yields 422.
func (h *ParkingHandler) QuoteFee(c echo.Context) error {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	amount, ev, err := h.Lifecycle.QuoteFee(c.Request().Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, service.ErrIncompleteSession):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session not checked out yet"})
		case errors.Is(err, fee.ErrInvalidInterval):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "exit time precedes entry time"})
		}
		log.Printf("fee quote failed for session %d: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id": ev.SessionID,
		"vehicle_id": ev.VehicleID,
		"entry_time": ev.EntryTime,
		"exit_time":  ev.ExitTime,
		"amount":     amount,
	})
}
