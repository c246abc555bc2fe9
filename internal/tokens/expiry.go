// Package tokens reads expiry information out of the bearer tokens stored on
// accounts. Signatures are never verified here; the issuer does that.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLifetime is assumed for tokens that carry no readable expiry.
const DefaultLifetime = time.Hour

var ErrNoExpiry = errors.New("token has no exp claim")

// ExpiryFromJWT returns the exp claim of an unverified JWT.
func ExpiryFromJWT(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// ResolveExpiry picks the expiry to store with token: explicit when set,
// else the JWT exp claim, else now plus DefaultLifetime.
func ResolveExpiry(token string, explicit, now time.Time) time.Time {
	if !explicit.IsZero() {
		return explicit
	}
	if exp, err := ExpiryFromJWT(token); err == nil {
		return exp
	}
	return now.Add(DefaultLifetime)
}
