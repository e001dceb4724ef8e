package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxTenantID = "tenant_id"
	CtxRole     = "role"
	ctxIdentity = "identity"
)

// IdentityFrom returns the authenticated staff identity, if any.
func IdentityFrom(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(utils.Identity)
	return id, ok
}

// TenantID returns the tenant of the authenticated caller, or 0.
func TenantID(c echo.Context) uint64 {
	id, _ := IdentityFrom(c)
	return id.TenantID
}
