// ABOUTME: HTTP client for the PathwayFR backend API
// ABOUTME: Wraps API calls with error handling and refresh-on-401 for authenticated requests

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Rayanebsh/Pathwayfr/internal/cache"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

// DefaultTimeout bounds every request unless WithTimeout overrides it
const DefaultTimeout = 30 * time.Second

// Client is the API client for the PathwayFR backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	catalog    *cache.Cache
	logger     *slog.Logger

	refreshGroup singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession attaches the token store used by authenticated calls
func WithSession(s *session.Store) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithCatalogCache caches the university and speciality lists
func WithCatalogCache(cc *cache.Cache) Option {
	return func(c *Client) {
		c.catalog = cc
	}
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the attached token store, which may be nil
func (c *Client) Session() *session.Store {
	return c.session
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// newRequest builds a JSON request. body is pre-encoded so the same payload
// can be sent twice by FetchWithAuth.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}
	return data, nil
}

// send performs req and logs it. Transport failures come back classified.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration", time.Since(start),
	}
	if err != nil {
		c.logger.Debug("Request failed", append(attrs, "error", err)...)
		return nil, c.handleRequestError(ctx, err)
	}
	c.logger.Debug("Request completed", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// Do sends an unauthenticated request
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

// FetchWithAuth sends a request with the stored bearer token. On a 401 with a
// refresh token present it refreshes once and retries exactly once. Concurrent
// callers hitting 401 share a single refresh.
func (c *Client) FetchWithAuth(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.session == nil {
		return nil, ErrNoToken
	}
	token := c.session.AccessToken()
	if token == "" {
		return nil, ErrNoToken
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.sendWithToken(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || c.session.RefreshToken() == "" {
		return resp, nil
	}
	drain(resp)

	newToken, err := c.refreshedToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return c.sendWithToken(ctx, method, path, payload, newToken)
}

func (c *Client) sendWithToken(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.send(ctx, req)
}

// refreshedToken returns an access token newer than stale. When another
// caller already replaced it, no refresh request is made.
func (c *Client) refreshedToken(ctx context.Context, stale string) (string, error) {
	if current := c.session.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	// The shared refresh outlives any single caller; each caller still
	// honours its own context while waiting.
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.refreshAccessToken(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", c.handleRequestError(ctx, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		return res.Val.(string), nil
	}
}

// refreshAccessToken calls POST /auth/refresh with the refresh token as bearer
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return "", c.expire()
	}

	resp, err := c.sendWithToken(ctx, http.MethodPost, "/auth/refresh", nil, refresh)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("Token refresh rejected", "status", resp.StatusCode)
		return "", c.expire()
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.AccessToken == "" {
		c.logger.Info("Token refresh returned no access token")
		return "", c.expire()
	}
	if err := c.session.SetAccessToken(out.AccessToken); err != nil {
		return "", err
	}
	c.logger.Debug("Access token refreshed")
	return out.AccessToken, nil
}

func (c *Client) expire() error {
	if err := c.session.ClearTokens(); err != nil {
		c.logger.Warn("Failed to clear tokens", "error", err)
	}
	return ErrSessionExpired
}

// doJSON sends an unauthenticated request and decodes a 2xx body into out
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// authJSON sends an authenticated request and decodes a 2xx body into out
func (c *Client) authJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.FetchWithAuth(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid response from backend: %v", ErrUnexpectedFormat, err)
	}
	return nil
}

// handleRequestError converts transport and context errors to sentinels
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: cannot connect to backend at %s: %v", ErrNetwork, c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: backend returned status %d", ErrUnexpectedFormat, resp.StatusCode)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return fmt.Errorf("%w: backend returned status %d", ErrUnexpectedFormat, resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
