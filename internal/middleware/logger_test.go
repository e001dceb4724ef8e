package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	mw := RequestLogger(log)

	rec := call(t, mw(func(c echo.Context) error {
		c.Set(CtxTenantID, uint64(3))
		return c.NoContent(http.StatusNoContent)
	}), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "request served", entry.Message)
	assert.Equal(t, uint64(3), entry.Data["tenant_id"])
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])

	rec = call(t, mw(func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	}), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	rec = call(t, mw(func(c echo.Context) error {
		return c.NoContent(http.StatusBadGateway)
	}), "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
