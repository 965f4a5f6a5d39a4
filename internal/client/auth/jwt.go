// Package auth inspects session tokens on the client. Tokens are signed by the
// backend with a key the client never sees, so claims are read without
// signature verification and only used for display and for skipping a
// re-validation round-trip that is certain to fail.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT marks a token that cannot be read as a JWT.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims mirrors the payload of a VerifyNow session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Profile returns the normalized profile carried in the claims.
func (c *Claims) Profile() models.UserProfile {
	return models.UserProfile{ID: c.UserID, Email: c.Email, Name: c.Name, Image: c.Picture}.Normalize()
}

// ParseUnverified decodes the claims of tokenString without checking the
// signature.
func ParseUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim. ok is false for opaque tokens and tokens
// without exp.
func ExpiresAt(tokenString string) (t time.Time, ok bool) {
	claims, err := ParseUnverified(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether tokenString carries an exp claim that is not after
// now. Tokens it cannot read are never reported as expired.
func Expired(tokenString string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenString)
	return ok && !exp.After(now)
}
