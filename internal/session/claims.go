// ABOUTME: Reads display-only claims from the stored access token
// ABOUTME: The signature is not checked; the backend remains the authority

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoAccessToken is returned by Claims when no token is stored
var ErrNoAccessToken = errors.New("no access token stored")

// Claims is the subset of the backend's JWT the client displays
type Claims struct {
	jwt.RegisteredClaims
}

// Claims decodes the access token without verifying it
func (s *Store) Claims() (*Claims, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoAccessToken
	}
	return ParseClaims(token)
}

// ParseClaims decodes a JWT payload without verifying its signature
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	return claims, nil
}

// ExpiresIn returns the time left before expiry, or false when the token
// carries no exp claim
func (c *Claims) ExpiresIn(now time.Time) (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}

// Expired reports whether the exp claim is in the past
func (c *Claims) Expired(now time.Time) bool {
	left, ok := c.ExpiresIn(now)
	return ok && left <= 0
}
