package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/handler"
	"github.com/iliyamo/restaurant-table-booking/internal/middleware"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// RegisterCustomer registers the authenticated booking endpoints under /v1.
// Any signed-in user, customer or owner, may book and cancel their own
// bookings. extra runs after authentication, so per-user rate limits see
// the caller's id.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, p *handler.ProfileHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleOwner),
	}
	g := e.Group("/v1", append(mw, extra...)...)
	g.POST("/bookings", h.Create)
	g.DELETE("/bookings/:id", h.Cancel)
	g.GET("/my-bookings", h.MyBookings)
	g.GET("/me", p.Me)

	// Paths used by the mobile app.
	g.POST("/book", h.Create)
	g.POST("/cancel-booking", h.CancelByBody)
}
