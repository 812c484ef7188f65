package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/handler"
	"github.com/iliyamo/restaurant-table-booking/internal/middleware"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// RegisterOwner registers owner-scoped endpoints. Ownership of the specific
// restaurant is checked by the engine.
func RegisterOwner(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	}
	g := e.Group("/v1", append(mw, extra...)...)
	g.GET("/restaurants/:id/bookings", h.RestaurantBookings)
}
