package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims is the subset of GoTrue access-token claims the client reads.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// parseClaims decodes the claims of an access token without verifying its
// signature.
func parseClaims(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

func (c *accessClaims) expiresAt() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *accessClaims) issuedAt() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
