// Package gateway is the HTTP+JSON client for the draft backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"draftdesk/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Credentials supplies the bearer token and is told when the backend rejects it.
type Credentials interface {
	AccessToken() string
	// Invalidate is called once per 401 response; implementations purge the
	// stored session.
	Invalidate()
}

// Client talks to the backend's /api endpoints.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials Credentials
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCredentials attaches a bearer token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.credentials = creds }
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, query url.Values, payload any) (*request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return &request{
		method:      method,
		path:        path,
		query:       query,
		body:        bytes.NewReader(b),
		contentType: "application/json",
	}, nil
}

// do sends r and decodes a 2xx JSON body into out (if non-nil). Non-2xx
// answers and transport failures come back as domain errors.
func (c *Client) do(ctx context.Context, r *request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.NetworkError{Err: err}
		}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("build request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.credentials != nil {
		if token := c.credentials.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", r.method,
			"path", r.path,
			"request_id", requestID,
			"error", err,
		)
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && c.credentials != nil {
			c.credentials.Invalidate()
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode %s %s response: %w", r.method, r.path, err),
		}
	}
	return nil
}

// Ping calls GET /api/ping.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, &request{method: http.MethodGet, path: "/api/ping"}, nil)
}
