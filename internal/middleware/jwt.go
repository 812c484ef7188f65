package middleware // reusable HTTP middleware for the booking API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's id (uint64) and role (string) in the context under
// CtxUserID and CtxRole. The secret must match the identity service's.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			// ParseAccessToken already validated the subject.
			uid, _ := claims.UserID()

			c.Set(CtxUserID, uid)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
