package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the backend puts in its access tokens.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseToken decodes an access token without verifying its signature. The
// client never holds the backend's signing key; the token is only decoded
// locally to learn the current user id before opening a channel. The server
// re-validates the token on every connection upgrade.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	if claims.UserID == 0 {
		return nil, errors.New("token has no user_id claim")
	}

	return claims, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never expire locally.
func (c *Claims) Expired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(c.ExpiresAt.Time)
}
