package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	raw, err := encodePayload(http.StatusOK, hdr, []byte(`[{"number":1}]`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(raw)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, gotHdr.Get(echo.HeaderContentType))
	assert.Equal(t, `[{"number":1}]`, string(body))
}

func TestDecodePayloadRejectsCorruptData(t *testing.T) {
	for name, bs := range map[string][]byte{
		"short":       {0, 0, 0},
		"header past": {0, 0, 0, 200, 0, 0, 0, 50, '{'},
		"bad header":  {0, 0, 0, 200, 0, 0, 0, 3, 'x', 'y', 'z'},
	} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok, name)
	}
}

func TestCaptureWriterTruncates(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, err := cw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.False(t, cw.truncated)
	_, err = cw.Write([]byte("defg"))
	require.NoError(t, err)
	assert.True(t, cw.truncated)
	assert.Equal(t, "abc", cw.buf.String())
	assert.Equal(t, "abcdefg", rec.Body.String(), "client still gets the full body")

	cw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, cw.status)
}

func TestResponseCacheInactive(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, nil)
	assert.False(t, rc.active())
	rc.Invalidate(context.Background(), 1)

	h := rc.Middleware()(func(c echo.Context) error { return c.String(http.StatusOK, "fresh") })
	rec := call(t, h, "")
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))

	var nilCache *ResponseCache
	assert.False(t, nilCache.active())
}
