package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-occupancy-service/internal/queue"
	"github.com/iliyamo/parking-occupancy-service/internal/repository"
	"github.com/iliyamo/parking-occupancy-service/internal/service"
	"github.com/iliyamo/parking-occupancy-service/internal/service/queue_publisher"
)

// PaymentHandler exposes the in-process payment collaborator: the
// endpoint a pay station calls when a parking fee has been collected.
// Marking the payment and releasing the occupancy entry happen in one
// transaction inside the lifecycle coordinator; the broker event is
// published afterwards on a best-effort basis, mirroring how the
// booking confirmation publisher tolerates broker outages.
type PaymentHandler struct {
	Lifecycle *service.Lifecycle
}

// NewPaymentHandler constructs a PaymentHandler.  The lifecycle
// coordinator must be non-nil.
func NewPaymentHandler(lc *service.Lifecycle) *PaymentHandler {
	if lc == nil {
		panic("nil lifecycle passed to NewPaymentHandler")
	}
	return &PaymentHandler{Lifecycle: lc}
}

// Complete handles POST /v1/payments/complete.  The request body must
// contain a JSON object with "vehicle_id".  The vehicle's pending
// payment transitions to paid exactly once; a vehicle with no pending
// payment yields 404 so a repeated completion cannot re-fire the
// release.
func (h *PaymentHandler) Complete(c echo.Context) error {
	var body struct {
		VehicleID string `json:"vehicle_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.VehicleID = strings.TrimSpace(body.VehicleID)
	if body.VehicleID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id is required"})
	}
	ctx := c.Request().Context()
	if err := h.Lifecycle.CompletePayment(ctx, body.VehicleID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotPending):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending payment for vehicle"})
		case errors.Is(err, repository.ErrConsistency):
			log.Printf("consistency violation completing payment for %s: %v", body.VehicleID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "occupancy consistency violation"})
		}
		log.Printf("payment completion failed for %s: %v", body.VehicleID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Notify downstream consumers; a broker outage must not fail the payment.
	paidAt := time.Now().UTC().Format(time.RFC3339)
	_ = queue_publisher.PublishPaymentCompleted(ctx, queue.PaymentCompletedEvent{
		VehicleID: body.VehicleID,
		PaidAt:    paidAt,
		Source:    "pay-station",
	})
	return c.JSON(http.StatusOK, echo.Map{
		"vehicle_id": body.VehicleID,
		"paid_at":    paidAt,
	})
}
