package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/metrics"
)

// AccessLog writes one structured line per request and records the HTTP
// metrics. Routes are labelled by their pattern, not the raw path.
func AccessLog(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)

			metrics.RequestTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

			l := log.WithCtx(req.Context())
			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", route,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			switch {
			case status >= 500:
				l.Error("http request", args...)
			case status >= 400:
				l.Warn("http request", args...)
			default:
				l.Info("http request", args...)
			}
			return nil
		}
	}
}
