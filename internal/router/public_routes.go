package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
)

// RegisterPublic mounts the guest endpoints.  limit guards every route;
// cache fronts the table list only, since availability must be live.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/public/tenants/:tenant", limit)
	g.POST("/reservations", p.CreateReservation)
	g.GET("/availability", p.Availability)
	g.GET("/tables", p.FloorPlan, cache)
}
