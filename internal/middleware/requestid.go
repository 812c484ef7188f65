package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// RequestID propagates X-Request-ID, generating one when absent, and
// stores it in the request context for logger.WithCtx.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}
