package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// BookingHandler serves the authenticated booking endpoints. JWTAuth must
// run first.
type BookingHandler struct {
	Svc BookingService
	Log *logger.Logger
}

func NewBookingHandler(svc BookingService, log *logger.Logger) *BookingHandler {
	if svc == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BookingHandler{Svc: svc, Log: log}
}

type createBookingBody struct {
	RestaurantID    flexID     `json:"restaurant_id"`
	TableID         flexID     `json:"table_id"`
	ReservationTime flexString `json:"reservation_time"`
	// Time is an alias for reservation_time.
	Time flexString `json:"time"`
}

// Create handles POST /v1/bookings. Body: restaurant_id, table_id and
// reservation_time. Returns 201 with the booking, 409 when the slot is
// already taken.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body createBookingBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	at := string(body.ReservationTime)
	if at == "" {
		at = string(body.Time)
	}

	b, err := h.Svc.CreateBooking(c.Request().Context(), booking.CreateBookingRequest{
		UserID:       userID,
		RestaurantID: uint64(body.RestaurantID),
		TableID:      uint64(body.TableID),
		Time:         at,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "table booked", "booking": b})
}

// Cancel handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.cancel(c, parseID(c, "id"))
}

// CancelByBody handles POST /v1/cancel-booking with {"booking_id": n}.
func (h *BookingHandler) CancelByBody(c echo.Context) error {
	var body struct {
		BookingID flexID `json:"booking_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.cancel(c, uint64(body.BookingID))
}

// cancel reports a missing booking and someone else's booking identically.
func (h *BookingHandler) cancel(c echo.Context, bookingID uint64) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.Svc.CancelBooking(c.Request().Context(), booking.CancelBookingRequest{
		UserID:    userID,
		BookingID: bookingID,
	})
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) || errors.Is(err, booking.ErrForbidden) {
			return c.JSON(http.StatusForbidden, errorBody{
				Error: booking.AsError(err).Message,
				Code:  booking.CodeForbidden,
			})
		}
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled", "booking": b})
}

// MyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Svc.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// RestaurantBookings handles GET /v1/restaurants/:id/bookings for the
// restaurant's owner.
func (h *BookingHandler) RestaurantBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	restaurantID := parseID(c, "id")
	if restaurantID == 0 {
		return badRequest(c, "invalid restaurant id")
	}
	items, err := h.Svc.ListRestaurantBookings(c.Request().Context(), userID, restaurantID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}
