package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{UserID: 12, TenantID: 3, Role: "STAFF"}
	tok, err := NewAccessToken(secret, id, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	got, err := ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken(secret, Identity{UserID: 1, TenantID: 1, Role: "OWNER"}, 15)
	require.NoError(t, err)
	expired, err := NewAccessToken(secret, Identity{UserID: 1, TenantID: 1}, -1)
	require.NoError(t, err)
	noTenant, err := NewAccessToken(secret, Identity{UserID: 1}, 15)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "tenant_id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "tenant_id": 1})
	noExpRaw, err := noExp.SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {secret, expired.Token},
		"no tenant":    {secret, noTenant.Token},
		"alg none":     {secret, unsigned},
		"no expiry":    {secret, noExpRaw},
		"garbage":      {secret, "not.a.jwt"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(c.secret, c.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), a.Exp, 5*time.Second)

	h := HashRefreshRaw(a.Raw)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw(a.Raw))
	assert.NotEqual(t, h, HashRefreshRaw(b.Raw))
	assert.Equal(t, strings.ToLower(h), h)
}
