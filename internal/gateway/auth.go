package gateway

import (
	"context"
	"fmt"
	"net/http"

	"draftdesk/internal/domain/models"
	"draftdesk/internal/domain/services"
)

var _ services.AuthGateway = (*Client)(nil)

// LoginWithGoogle calls POST /api/auth/google.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*models.TokenResponse, error) {
	r, err := jsonRequest(http.MethodPost, "/api/auth/google", nil, map[string]string{"token": idToken})
	if err != nil {
		return nil, err
	}

	var out models.TokenResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, fmt.Errorf("google login: %w", err)
	}
	return &out, nil
}

// CurrentUser calls GET /api/auth/me.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/api/auth/me"}, &out); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &out, nil
}
