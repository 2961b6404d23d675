package signing

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("shared-secret")

func TestSign_ClaimsRoundTrip(t *testing.T) {
	token, err := Sign("acme", testSecret, 2*time.Minute)
	require.NoError(t, err)

	claims, err := Parse(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.Account)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, int64(120), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
}

func TestSign_TTLWindow(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{name: "default", ttl: DefaultTTL},
		{name: "one second", ttl: time.Second},
		{name: "one hour", ttl: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Sign("acme", testSecret, tt.ttl)
			require.NoError(t, err)

			claims, err := Parse(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.ttl/time.Second), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
		})
	}
}

func TestSign_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := Sign("acme", testSecret, DefaultTTL)
		require.NoError(t, err)

		claims, err := Parse(token, testSecret)
		require.NoError(t, err)
		assert.False(t, seen[claims.ID], "duplicate jti %s", claims.ID)
		seen[claims.ID] = true
	}
}

func TestSign_HeaderDeclaresHS256(t *testing.T) {
	token, err := Sign("acme", testSecret, DefaultTTL)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)

	var header map[string]any
	require.NoError(t, json.Unmarshal(raw, &header))
	assert.Equal(t, "HS256", header["alg"])
}

func TestSigner_InjectedClockAndID(t *testing.T) {
	fixed := time.Now().Add(-10 * time.Second)
	s := Signer{
		Now:   func() time.Time { return fixed },
		NewID: func() string { return "fixed-id" },
	}

	token, err := s.Sign("acme; -turbo", testSecret, 60*time.Second)
	require.NoError(t, err)

	claims, err := Parse(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", claims.ID)
	assert.Equal(t, "acme; -turbo", claims.Account)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixed.Unix()+60, claims.ExpiresAt.Unix())
}

func TestSign_Errors(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		token, err := Sign("acme", nil, DefaultTTL)
		require.Error(t, err)
		assert.Empty(t, token)

		var signErr *Error
		assert.ErrorAs(t, err, &signErr)
		assert.Contains(t, err.Error(), "secret is empty")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		token, err := Sign("acme", testSecret, 0)
		require.Error(t, err)
		assert.Empty(t, token)

		var signErr *Error
		assert.ErrorAs(t, err, &signErr)
	})
}

func TestParse_Rejects(t *testing.T) {
	token, err := Sign("acme", testSecret, DefaultTTL)
	require.NoError(t, err)

	_, err = Parse(token, []byte("other-secret"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")

	_, err = Parse("", testSecret)
	require.Error(t, err)

	_, err = Parse("not.a.token", testSecret)
	require.Error(t, err)

	expired := Signer{Now: func() time.Time { return time.Now().Add(-time.Hour) }}
	old, err := expired.Sign("acme", testSecret, time.Minute)
	require.NoError(t, err)
	_, err = Parse(old, testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}
