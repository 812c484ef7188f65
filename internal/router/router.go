package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-booking/internal/handler"
	"github.com/iliyamo/restaurant-table-booking/internal/metrics"
)

// RegisterRoutes registers the operational endpoints that never require
// authentication: liveness, readiness and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterPublic registers unauthenticated browse endpoints. The restaurant
// list goes through the response cache; table availability changes with
// every booking and is always served fresh. Either middleware may be nil.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit, cache echo.MiddlewareFunc) {
	var list, tables []echo.MiddlewareFunc
	if limit != nil {
		list = append(list, limit)
		tables = append(tables, limit)
	}
	if cache != nil {
		list = append(list, cache)
	}
	e.GET("/v1/restaurants", p.ListRestaurants, list...)
	e.GET("/v1/restaurants/:id/tables", p.ListTables, tables...)
}
