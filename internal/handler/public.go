package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// PublicHandler serves the unauthenticated browse endpoints.
type PublicHandler struct {
	Svc BookingService
	Log *logger.Logger
}

func NewPublicHandler(svc BookingService, log *logger.Logger) *PublicHandler {
	if svc == nil {
		panic("nil booking service passed to NewPublicHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PublicHandler{Svc: svc, Log: log}
}

// ListRestaurants handles GET /v1/restaurants.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	items, err := h.Svc.ListRestaurants(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListTables handles GET /v1/restaurants/:id/tables. Status is derived
// from active bookings at request time.
func (h *PublicHandler) ListTables(c echo.Context) error {
	id := parseID(c, "id")
	if id == 0 {
		return badRequest(c, "invalid restaurant id")
	}
	items, err := h.Svc.ListTablesWithStatus(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}
