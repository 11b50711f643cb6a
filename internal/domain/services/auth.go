package services

import (
	"context"

	"draftdesk/internal/domain/models"
)

// AuthGateway exchanges identity-provider tokens for backend sessions.
type AuthGateway interface {
	// LoginWithGoogle trades a Google ID token for a backend access token.
	LoginWithGoogle(ctx context.Context, idToken string) (*models.TokenResponse, error)

	// CurrentUser returns the profile bound to the stored access token.
	CurrentUser(ctx context.Context) (*models.User, error)
}

// SessionStore persists the login session between runs.
type SessionStore interface {
	// Load returns the saved session, or nil when none is stored.
	Load() (*models.Session, error)
	Save(session *models.Session) error
	Clear() error
}

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyToken(token string) (*models.AccessClaims, error)
}
