package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims represents the claims of the access token the backend issues
// after an identity-provider login.
type AccessClaims struct {
	jwt.RegisteredClaims // sub = user ID, exp = expiry
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}

// User is the minimal profile kept alongside the access token.
type User struct {
	ID      string  `json:"id" yaml:"id"`
	Email   string  `json:"email" yaml:"email"`
	Name    *string `json:"name" yaml:"name,omitempty"`
	Picture *string `json:"picture" yaml:"picture,omitempty"`
}

// Session is the persisted login state: token plus profile.
type Session struct {
	AccessToken string     `yaml:"access_token"`
	TokenType   string     `yaml:"token_type"`
	User        User       `yaml:"user"`
	ExpiresAt   *time.Time `yaml:"expires_at,omitempty"`
	SavedAt     time.Time  `yaml:"saved_at"`
}

// Expired reports whether the session's token is past its expiry at now.
// Tokens without an exp claim never expire client-side.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// TokenResponse is the backend's answer to a login exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
