package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// UserReader looks up users by id.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type ProfileHandler struct {
	Users UserReader
	Log   *logger.Logger
}

func NewProfileHandler(users UserReader, log *logger.Logger) *ProfileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProfileHandler{Users: users, Log: log}
}

// Me handles GET /v1/me and returns the caller's profile.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, booking.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{Error: "user not found", Code: booking.CodeNotFound})
		}
		h.Log.WithCtx(c.Request().Context()).Error("load profile failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal storage error", Code: booking.CodeStorage})
	}
	return c.JSON(http.StatusOK, u)
}
