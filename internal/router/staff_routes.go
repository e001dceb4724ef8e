package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterStaff mounts the staff console under /v1.  Every route needs a
// valid token; the tenant is taken from it.  Changing the floor plan is
// reserved to owners.
func RegisterStaff(e *echo.Echo, t *handler.TableHandler, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleStaff),
	)
	owner := middleware.RequireRole(model.RoleOwner)

	g.GET("/tables", t.List)
	g.GET("/tables/:id", t.Get)
	g.GET("/tables/:id/qrcode", t.QRCode)
	g.POST("/tables", t.Create, owner)
	g.PUT("/tables/:id", t.Update, owner)
	g.DELETE("/tables/:id", t.Delete, owner)

	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)
	g.GET("/reservations/:id/candidates", r.Candidates)
	g.POST("/reservations/:id/assign", r.Assign)
	g.PATCH("/reservations/:id/status", r.UpdateStatus)
}
