package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/botsarefuture/lac-go/internal/auth"
)

// DefaultTimeout bounds every outbound call to the auth service.
const DefaultTimeout = 5 * time.Second

// Status machine values returned by the auth service.
const (
	StatusOK           = "OK"
	StatusTokenExpired = "TOKEN_EXPIRED"
	StatusInvalid      = "INVALID"
)

// Client talks to the external auth service. It performs no session or
// intent management; it only translates HTTP outcomes into the auth error
// taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the auth service at baseURL. timeout <= 0 falls
// back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// UserInfo exchanges a callback code for the user's identity.
// Network failure or timeout maps to ErrServiceUnavailable, a non-2xx
// response to ErrInvalidCredentials, and an unusable payload to
// ErrMalformedResponse.
func (c *Client) UserInfo(ctx context.Context, code string) (*auth.Identity, error) {
	endpoint := c.baseURL + "/api/userinfo?code=" + url.QueryEscape(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build userinfo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrServiceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: auth service returned %d", auth.ErrInvalidCredentials, resp.StatusCode)
	}

	return auth.ParseIdentity(body)
}

// statusResponse is the auth service's generic response envelope.
type statusResponse struct {
	StatusMachine string `json:"status_machine"`
	Message       string `json:"message"`
}

// Verify asks the auth service whether a previously issued token is still
// active. TOKEN_EXPIRED and INVALID both map to ErrInvalidCredentials.
func (c *Client) Verify(ctx context.Context, token string) error {
	resp, err := c.postToken(ctx, "/verify", token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrServiceUnavailable, err)
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("%w: %v", auth.ErrMalformedResponse, err)
	}

	switch status.StatusMachine {
	case StatusOK:
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: auth service returned %d", auth.ErrInvalidCredentials, resp.StatusCode)
		}
		return nil
	case StatusTokenExpired, StatusInvalid:
		return fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, status.StatusMachine)
	default:
		return fmt.Errorf("%w: status %q: %s", auth.ErrInvalidCredentials, status.StatusMachine, status.Message)
	}
}

// Logout tells the auth service to revoke a token. Best-effort; callers
// clear the local session regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.postToken(ctx, "/logout", token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: auth service returned %d", auth.ErrInvalidCredentials, resp.StatusCode)
	}
	return nil
}

func (c *Client) postToken(ctx context.Context, path, token string) (*http.Response, error) {
	payload, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, fmt.Errorf("client: marshal token payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("client: build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrServiceUnavailable, err)
	}
	return resp, nil
}
