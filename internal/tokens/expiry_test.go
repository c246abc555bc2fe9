package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestExpiryFromJWT(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := ExpiryFromJWT(signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestExpiryFromJWT_ExpiredTokenStillReadable(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)

	got, err := ExpiryFromJWT(signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestExpiryFromJWT_Errors(t *testing.T) {
	_, err := ExpiryFromJWT(signed(t, jwt.RegisteredClaims{Subject: "u1"}))
	require.ErrorIs(t, err, ErrNoExpiry)

	_, err = ExpiryFromJWT("opaque-refresh-token")
	require.Error(t, err)
}

func TestResolveExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	explicit := now.Add(24 * time.Hour)
	fromClaim := now.Add(2 * time.Hour)
	tok := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fromClaim)})

	tests := []struct {
		name     string
		token    string
		explicit time.Time
		want     time.Time
	}{
		{"explicit wins", tok, explicit, explicit},
		{"claim", tok, time.Time{}, fromClaim},
		{"fallback", "opaque", time.Time{}, now.Add(DefaultLifetime)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ResolveExpiry(tt.token, tt.explicit, now)))
		})
	}
}
