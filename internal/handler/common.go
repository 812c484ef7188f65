package handler // handler defines the HTTP handlers of the booking API

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/middleware"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// BookingService is the engine surface the handlers depend on.
type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateBookingRequest) (model.Booking, error)
	CancelBooking(ctx context.Context, req booking.CancelBookingRequest) (model.Booking, error)
	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)
	ListTablesWithStatus(ctx context.Context, restaurantID uint64) ([]model.TableStatus, error)
	ListUserBookings(ctx context.Context, userID uint64) ([]model.UserBooking, error)
	ListRestaurantBookings(ctx context.Context, ownerID, restaurantID uint64) ([]model.RestaurantBooking, error)
}

// getUserID extracts the user id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive integer path parameter. Zero means invalid.
func parseID(c echo.Context, name string) uint64 {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// flexID accepts a JSON number or a numeric string. Mobile clients send
// both.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.New("must be a positive integer")
	}
	*f = flexID(n)
	return nil
}

// flexString accepts a JSON string or number and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("must be a string or number")
	}
	*f = flexString(n.String())
	return nil
}
