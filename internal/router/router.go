package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-occupancy-service/internal/handler"
)

// RegisterRoutes registers routes that carry no middleware on the
// provided Echo instance.  Currently it exposes only a health check,
// used by load balancers and monitoring systems to verify that the
// service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterParking registers the barrier-facing parking routes.  The
// occupant search endpoint is wrapped with the optional response cache
// middleware; pass nil to register it uncached.  Check-in, check-out
// and fee quoting always hit the database directly — a stale answer at
// a barrier would let a vehicle through on wrong data.
func RegisterParking(e *echo.Echo, p *handler.ParkingHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1/parkings")
	// Record a vehicle entering the facility.
	g.POST("", p.CheckIn)
	// Partial-plate search over current occupants, for exit terminals.
	if cacheMW != nil {
		g.GET("/search", p.Search, cacheMW)
	} else {
		g.GET("/search", p.Search)
	}
	// Stamp the physical exit time on a session.
	g.POST("/:id/checkout", p.CheckOut)
	// Quote the fee for a completed session.
	g.GET("/:id/fee", p.QuoteFee)
	// Raw occupancy listing, for the facility dashboard.
	if cacheMW != nil {
		e.GET("/v1/occupancy", p.Occupants, cacheMW)
	} else {
		e.GET("/v1/occupancy", p.Occupants)
	}
}

// RegisterPayments registers the pay-station route that completes a
// vehicle's payment and releases its occupancy entry.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/complete", p.Complete)
}
