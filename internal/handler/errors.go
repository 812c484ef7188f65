package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// errorBody is the JSON shape of every engine error response.
type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

func statusFor(code string) int {
	switch code {
	case booking.CodeValidation:
		return http.StatusBadRequest
	case booking.CodeSlotTaken:
		return http.StatusConflict
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an engine error to its stable status and code. Internal
// causes are logged and never sent to the client.
func writeError(c echo.Context, log *logger.Logger, err error) error {
	e := booking.AsError(err)
	status := statusFor(e.Code())
	if status >= http.StatusInternalServerError {
		log.WithCtx(c.Request().Context()).Error("request failed",
			"path", c.Path(), "code", e.Code(), "error", err)
	}
	return c.JSON(status, errorBody{Error: e.Message, Code: e.Code(), Details: e.Details})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: booking.CodeValidation})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
