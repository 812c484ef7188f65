package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/handler"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
	"github.com/iliyamo/restaurant-table-booking/internal/utils"
)

const secret = "router-test-secret"

type stubService struct{ created int }

func (s *stubService) CreateBooking(_ context.Context, req booking.CreateBookingRequest) (model.Booking, error) {
	s.created++
	return model.Booking{ID: 1, UserID: req.UserID, Status: model.BookingConfirmed}, nil
}

func (s *stubService) CancelBooking(_ context.Context, req booking.CancelBookingRequest) (model.Booking, error) {
	return model.Booking{ID: req.BookingID, Status: model.BookingCancelled}, nil
}

func (s *stubService) ListRestaurants(context.Context) ([]model.Restaurant, error) {
	return []model.Restaurant{}, nil
}

func (s *stubService) ListTablesWithStatus(context.Context, uint64) ([]model.TableStatus, error) {
	return []model.TableStatus{}, nil
}

func (s *stubService) ListUserBookings(context.Context, uint64) ([]model.UserBooking, error) {
	return []model.UserBooking{}, nil
}

func (s *stubService) ListRestaurantBookings(context.Context, uint64, uint64) ([]model.RestaurantBooking, error) {
	return []model.RestaurantBooking{}, nil
}

type stubUsers struct{}

func (stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	return model.User{ID: id, Role: model.RoleCustomer}, nil
}

func newServer(t *testing.T) (*echo.Echo, *stubService) {
	t.Helper()
	svc := &stubService{}
	e := echo.New()
	bh := handler.NewBookingHandler(svc, nil)
	RegisterRoutes(e, nil)
	RegisterPublic(e, handler.NewPublicHandler(svc, nil), nil, nil)
	RegisterCustomer(e, bh, handler.NewProfileHandler(stubUsers{}, nil), secret)
	RegisterOwner(e, bh, secret)
	return e, svc
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	e, _ := newServer(t)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/metrics", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/restaurants", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/restaurants/3/tables", "", "").Code)
}

func TestBookingRoutesRequireToken(t *testing.T) {
	e, svc := newServer(t)
	body := `{"restaurant_id":1,"table_id":2,"reservation_time":"2025-06-01T19:00:00Z"}`

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/bookings", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/bookings", "Bearer junk", body).Code)
	assert.Zero(t, svc.created)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", token(t, 5, model.RoleCustomer), body).Code)
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/book", token(t, 6, model.RoleOwner), body).Code)
	assert.Equal(t, 2, svc.created)

	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/v1/bookings/1", token(t, 5, model.RoleCustomer), "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/cancel-booking", token(t, 5, model.RoleCustomer), `{"booking_id":1}`).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/my-bookings", token(t, 5, model.RoleCustomer), "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/me", token(t, 5, model.RoleCustomer), "").Code)
}

func TestRestaurantBookingsRequireOwnerRole(t *testing.T) {
	e, _ := newServer(t)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/v1/restaurants/1/bookings", token(t, 5, model.RoleCustomer), "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/restaurants/1/bookings", token(t, 6, model.RoleOwner), "").Code)
}

func TestUnknownRoleRejected(t *testing.T) {
	e, _ := newServer(t)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/v1/my-bookings", token(t, 5, "ADMIN"), "").Code)
}
