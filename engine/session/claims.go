package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the fields read from the identity token.
type IdentityClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// ParseIdentity decodes the identity token without verifying its signature.
// The server is the authority on validity; the client only reads display fields.
func ParseIdentity(token string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}
	return claims, nil
}

// ExpiresWithin reports whether the token expires before now+d.
// Tokens without an expiry never report true.
func (c *IdentityClaims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now.Add(d))
}

// Identity returns the decoded identity token, if one is stored.
func (s *Session) Identity() (*IdentityClaims, error) {
	token, ok := s.IDToken()
	if !ok {
		return nil, ErrNoUser
	}
	return ParseIdentity(token)
}
