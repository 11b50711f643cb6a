package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"draftdesk/internal/domain"
	"draftdesk/internal/domain/models"
	"draftdesk/internal/domain/services"
)

// SessionManager owns the login session: it exchanges identity-provider
// tokens, persists the result, and purges it when the backend rejects it.
// It satisfies gateway.Credentials.
type SessionManager struct {
	store    services.SessionStore
	verifier JWTVerifier
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	session *models.Session
	loaded  bool
	onPurge func()
}

// NewSessionManager creates a session manager. verifier may be nil, in which
// case claims are decoded without a signature check.
func NewSessionManager(store services.SessionStore, verifier JWTVerifier, logger *slog.Logger) *SessionManager {
	if verifier == nil {
		verifier = NewClaimsReader()
	}
	return &SessionManager{
		store:    store,
		verifier: verifier,
		now:      time.Now,
		logger:   logger,
	}
}

// OnPurge registers a callback run after the session is purged because the
// backend rejected it.
func (m *SessionManager) OnPurge(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPurge = fn
}

// Login trades idToken for a backend session and saves it.
func (m *SessionManager) Login(ctx context.Context, gw services.AuthGateway, idToken string) (*models.Session, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, &domain.ValidationError{Message: "identity token is required"}
	}

	resp, err := gw.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}

	claims, err := m.verifier.VerifyToken(resp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}

	session := &models.Session{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		User:        resp.User,
		SavedAt:     m.now(),
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		session.ExpiresAt = &exp
	}
	if session.User.ID == "" {
		session.User.ID = claims.GetUserID()
	}

	if err := m.store.Save(session); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = session
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("logged in", "user_id", session.User.ID, "email", session.User.Email)
	return session, nil
}

// Current returns the active session, or nil when logged out. Expired
// sessions are purged and reported as absent.
func (m *SessionManager) Current() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		session, err := m.store.Load()
		if err != nil {
			return nil, err
		}
		m.session = session
		m.loaded = true
	}

	if m.session != nil && m.session.Expired(m.now()) {
		m.logger.Info("session expired", "user_id", m.session.User.ID)
		m.session = nil
		if err := m.store.Clear(); err != nil {
			return nil, err
		}
	}
	return m.session, nil
}

// UserID returns the logged-in user's ID, or fallback when logged out.
func (m *SessionManager) UserID(fallback string) string {
	session, err := m.Current()
	if err != nil || session == nil || session.User.ID == "" {
		return fallback
	}
	return session.User.ID
}

// AccessToken returns the current bearer token, or "" when logged out.
func (m *SessionManager) AccessToken() string {
	session, err := m.Current()
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

// Invalidate purges the session after the backend answered 401. It is not
// retried; the user has to log in again.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	hadSession := m.session != nil
	m.session = nil
	m.loaded = true
	onPurge := m.onPurge
	err := m.store.Clear()
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to clear rejected session", "error", err)
	}
	if hadSession {
		m.logger.Warn("session rejected by backend, credentials purged")
	}
	if onPurge != nil {
		onPurge()
	}
}

// Logout removes the stored session.
func (m *SessionManager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.loaded = true
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.logger.Info("logged out")
	return nil
}

// IsAuthError reports whether err means the user must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
