package auth

import "draftdesk/internal/domain/models"

// JWTVerifier validates access tokens and returns their claims.
type JWTVerifier interface {
	// VerifyToken returns an error if the token is malformed, expired, or
	// (for signature-checking verifiers) not signed by a trusted key.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
