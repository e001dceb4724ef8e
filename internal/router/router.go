package router // package router wires handlers to paths per audience

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth mounts login, refresh and logout under /v1/auth and the
// authenticated account endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout accepts either a refresh token or a bearer token, so no JWT middleware
	g.POST("/logout", a.Logout)

	auth := middleware.JWTAuth(jwtSecret)
	g.POST("/staff", a.CreateStaff, auth, middleware.RequireRole(model.RoleOwner))
	e.GET("/v1/me", a.Me, auth, middleware.RequireRole(model.RoleOwner, model.RoleStaff))
}
