// Package api calls the chat server's HTTP endpoints.
//
// Auth endpoints (register, login, token renewal, logout) are sent without
// a bearer header; the user lookup is authenticated. On a 402 the client
// renews the access token and retries the request once, clearing the
// session when renewal fails. 400 responses carry a user-visible message
// and surface as a toast.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/parley-chat/parley/pkg/session"
	"github.com/parley-chat/parley/pkg/toast"
	"github.com/parley-chat/parley/pkg/wire"
)

type endpoint struct {
	method string
	path   string
}

var (
	epRegister      = endpoint{http.MethodPost, "/api/auth/register"}
	epLogin         = endpoint{http.MethodPost, "/api/auth/login"}
	epAutoLogin     = endpoint{http.MethodPost, "/api/auth/auto-login"}
	epRenewToken    = endpoint{http.MethodPost, "/api/auth/renew-token"}
	epLogout        = endpoint{http.MethodPost, "/api/auth/logout"}
	epGetUserByName = endpoint{http.MethodGet, "/api/user/username"}
)

// Client calls the server's HTTP API on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	toasts     *toast.Center
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToasts routes user-visible error messages to a toast center.
func WithToasts(center *toast.Center) Option {
	return func(c *Client) {
		c.toasts = center
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		session:    sess,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req wire.RegisterRequest) (wire.RegisterResponse, error) {
	return sendAuth[wire.RegisterResponse](ctx, c, epRegister, req)
}

// Login authenticates with username and password and installs the session.
func (c *Client) Login(ctx context.Context, req wire.LoginRequest) (wire.LoginResponse, error) {
	resp, err := sendAuth[wire.LoginResponse](ctx, c, epLogin, req)
	if err != nil {
		return wire.LoginResponse{}, err
	}
	c.session.Set(resp.User, resp.AccessToken)
	return resp, nil
}

// AutoLogin resumes a remembered session via the refresh cookie.
func (c *Client) AutoLogin(ctx context.Context) (wire.LoginResponse, error) {
	resp, err := sendAuth[wire.LoginResponse](ctx, c, epAutoLogin, nil)
	if err != nil {
		return wire.LoginResponse{}, err
	}
	c.session.Set(resp.User, resp.AccessToken)
	return resp, nil
}

// RenewToken fetches a fresh access token and installs it.
func (c *Client) RenewToken(ctx context.Context) (wire.RenewTokenResponse, error) {
	resp, err := sendAuth[wire.RenewTokenResponse](ctx, c, epRenewToken, nil)
	if err != nil {
		return wire.RenewTokenResponse{}, err
	}
	c.session.Renew(resp.AccessToken)
	return resp, nil
}

// Logout ends the server-side session and clears the local one.
func (c *Client) Logout(ctx context.Context) (wire.LogoutResponse, error) {
	resp, err := sendAuth[wire.LogoutResponse](ctx, c, epLogout, nil)
	c.session.Clear()
	return resp, err
}

// GetUserByName looks a user up by exact username. Authenticated.
func (c *Client) GetUserByName(ctx context.Context, username string) (wire.GetUserByNameResponse, error) {
	req := wire.GetUserByNameRequest{Username: username}
	if err := wire.Validate(req); err != nil {
		return wire.GetUserByNameResponse{}, err
	}
	return sendPrivate[wire.GetUserByNameResponse](ctx, c, epGetUserByName, req)
}

// sendAuth performs an unauthenticated request.
func sendAuth[D any](ctx context.Context, c *Client, ep endpoint, payload any) (D, error) {
	var zero D

	resp, body, err := c.do(ctx, ep, payload, "")
	if err != nil {
		return zero, err
	}
	if resp.StatusCode < 300 {
		return decodeJSON[D](body)
	}
	return zero, c.statusError(resp.StatusCode, body)
}

// sendPrivate performs a bearer-authenticated request with the 402
// renew-and-retry flow.
func sendPrivate[D any](ctx context.Context, c *Client, ep endpoint, payload any) (D, error) {
	var zero D

	resp, body, err := c.do(ctx, ep, payload, c.session.Token())
	if err != nil {
		return zero, err
	}
	if resp.StatusCode < 300 {
		return decodeJSON[D](body)
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return zero, c.statusError(resp.StatusCode, body)
	}

	// Token expired: renew and retry exactly once.
	renewed, err := c.RenewToken(ctx)
	if err != nil {
		c.session.Clear()
		return zero, err
	}

	resp, body, err = c.do(ctx, ep, payload, renewed.AccessToken)
	if err != nil {
		return zero, err
	}
	if resp.StatusCode < 300 {
		return decodeJSON[D](body)
	}
	if resp.StatusCode == http.StatusPaymentRequired {
		return zero, ErrTokenExpired
	}
	return zero, c.statusError(resp.StatusCode, body)
}

func (c *Client) do(ctx context.Context, ep endpoint, payload any, token string) (*http.Response, []byte, error) {
	target := c.baseURL + ep.path
	var reqBody io.Reader

	if payload != nil {
		if ep.method == http.MethodGet {
			query, err := encodeQuery(payload)
			if err != nil {
				return nil, nil, err
			}
			target += "?" + query
		} else {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, nil, err
			}
			reqBody = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, target, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", ep.method, "path", ep.path, "error", err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

// statusError maps a non-2xx response to an error. 400 bodies are shown to
// the user; everything else is logged.
func (c *Client) statusError(status int, body []byte) error {
	msg := string(body)
	if status == http.StatusBadRequest {
		if c.toasts != nil {
			c.toasts.Error(msg)
		}
		return &ToastError{Message: msg}
	}
	c.logger.Error("server error", "status", status, "body", msg)
	return fmt.Errorf("api: server returned %d", status)
}

func decodeJSON[D any](body []byte) (D, error) {
	var out D
	if err := json.Unmarshal(body, &out); err != nil {
		var zero D
		return zero, fmt.Errorf("api: decode response: %w", err)
	}
	return out, nil
}

// encodeQuery flattens a payload struct into query parameters via its JSON
// form. Only scalar fields encode; anything nested is rejected.
func encodeQuery(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("api: payload is not an object: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			values.Set(k, v)
		case bool:
			values.Set(k, fmt.Sprintf("%t", v))
		case float64:
			values.Set(k, strings.TrimSuffix(fmt.Sprintf("%v", v), ".0"))
		case nil:
		default:
			return "", fmt.Errorf("api: cannot encode field %q as query parameter", k)
		}
	}
	return values.Encode(), nil
}
