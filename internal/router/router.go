package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // panic recovery
	"github.com/rs/zerolog"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// New returns an Echo instance with the request validator, panic recovery
// and zerolog request logging installed.
func New(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	return e
}

// RegisterRoutes registers the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers account creation and login.  Both issue access
// tokens; every protected route validates them with JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterPublic registers browse endpoints that do not need a session.
// Show metadata goes through the response cache.  The seat grid accepts
// an optional token so signed-in viewers see their own bookings.
func RegisterPublic(e *echo.Echo, s *handler.ShowHandler, b *handler.BookingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/v1/shows", s.List, cache)
	e.GET("/v1/shows/:id", s.Get, cache)
	e.GET("/v1/shows/:id/seats", b.Seats, middleware.OptionalAuth(jwtSecret))
}
