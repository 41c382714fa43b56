package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// RegisterBookings registers the authenticated booking endpoints under
// /v1.  Mutating routes are rate limited per user and route; reads and
// the change stream are not.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/shows/:id/toggle", h.Toggle, limit)
	g.POST("/shows/:id/confirm", h.Confirm, limit)
	g.DELETE("/bookings/:id", h.Cancel, limit)

	g.GET("/bookings/:id", h.Get)
	g.GET("/my-bookings", h.Mine)
	g.GET("/shows/:id/stream", h.Stream)
}
