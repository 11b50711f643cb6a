package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"draftdesk/internal/domain"
	"draftdesk/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier checks token signatures against keys published at a JWKS URL.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches and refreshes public keys
// from jwksURL in the background until Close is called.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		cancel: cancel,
		logger: logger,
	}, nil
}

// VerifyToken validates the signature and standard claims of tokenString.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, &domain.UnauthorizedError{Message: "access token is invalid"}
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "access token has no subject"}
	}
	return claims, nil
}

// Close stops the background key refresh.
func (v *JWKSVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWT verifier closed")
	return nil
}

// ClaimsReader decodes token claims without checking the signature. The
// backend signs tokens with a secret the client never holds, so this is the
// default; the backend still rejects forged tokens with a 401.
type ClaimsReader struct {
	parser *jwt.Parser
}

// NewClaimsReader creates an unverified claims decoder.
func NewClaimsReader() *ClaimsReader {
	return &ClaimsReader{parser: jwt.NewParser()}
}

// VerifyToken decodes the claims and checks only that the token has a
// subject and has not expired.
func (r *ClaimsReader) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if _, _, err := r.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, &domain.UnauthorizedError{Message: "access token is malformed"}
	}
	if claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "access token has no subject"}
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(time.Now()) {
		return nil, &domain.UnauthorizedError{Message: "access token has expired"}
	}
	return claims, nil
}

// Close is a no-op.
func (r *ClaimsReader) Close() error { return nil }
