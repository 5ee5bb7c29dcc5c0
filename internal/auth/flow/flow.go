package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/botsarefuture/lac-go/internal/auth"
	"github.com/botsarefuture/lac-go/internal/auth/intent"
	"github.com/botsarefuture/lac-go/internal/logger"
	"github.com/botsarefuture/lac-go/internal/session"
)

// AuthClient is the outbound half of the login flow: it exchanges a callback
// code for the user's identity at the external auth service.
type AuthClient interface {
	UserInfo(ctx context.Context, code string) (*auth.Identity, error)
}

// Controller orchestrates the redirect-callback login dance: BeginLogin
// issues the external redirect, CompleteLogin verifies the callback and
// persists the resulting identity into the session store.
//
// The pending-intent store is owned here, not as ambient package state, so
// every controller instance has its own pending-intent space.
type Controller struct {
	appID     string
	authURL   string
	intentTTL time.Duration

	intents  intent.Store
	sessions session.Store
	client   AuthClient
}

// New creates a flow controller. intentTTL <= 0 falls back to
// intent.DefaultTTL.
func New(
	appID string,
	authServiceURL string,
	intentTTL time.Duration,
	intents intent.Store,
	sessions session.Store,
	client AuthClient,
) *Controller {
	if intentTTL <= 0 {
		intentTTL = intent.DefaultTTL
	}
	return &Controller{
		appID:     appID,
		authURL:   authServiceURL,
		intentTTL: intentTTL,
		intents:   intents,
		sessions:  sessions,
		client:    client,
	}
}

// BeginLogin stores a fresh login intent and returns the external
// authorization URL the user must be redirected to. returnURL is where the
// user lands after the flow completes; empty means the app root.
func (c *Controller) BeginLogin(ctx context.Context, returnURL string) (string, error) {
	state, err := intent.NewState()
	if err != nil {
		return "", err
	}

	it := intent.Intent{
		State:     state,
		AppID:     c.appID,
		ReturnURL: returnURL,
		ExpiresAt: time.Now().Add(c.intentTTL),
	}

	if err := c.intents.Put(ctx, it); err != nil {
		return "", fmt.Errorf("flow: failed to store login intent: %w", err)
	}

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("return_url", returnURL)
	q.Set("state", state)

	return c.authURL + "/authorize?" + q.Encode(), nil
}

// CompleteLogin handles the callback from the external auth service. The
// intent for state is consumed before anything else, whatever the outcome:
// a replayed callback always fails with ErrUnknownOrExpiredState.
//
// On success the identity is written into the session record for sessionID
// and returned, along with the return URL captured at BeginLogin.
func (c *Controller) CompleteLogin(
	ctx context.Context,
	sessionID string,
	state string,
	code string,
) (*auth.Identity, string, error) {

	it, ok, err := c.intents.Consume(ctx, state)
	if err != nil {
		logger.Error("intent lookup failed", map[string]any{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
		return nil, "", fmt.Errorf("flow: intent lookup failed: %w", err)
	}
	if !ok {
		logger.Warn("login callback with unknown state", map[string]any{
			"error": auth.ErrUnknownOrExpiredState.Error(),
		})
		return nil, "", auth.ErrUnknownOrExpiredState
	}

	identity, err := c.client.UserInfo(ctx, code)
	if err != nil {
		logger.Error("user info exchange failed", map[string]any{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
		return nil, "", err
	}

	now := time.Now()
	rec := session.Record{
		Identity:   identity,
		Token:      code,
		IssuedAt:   now,
		VerifiedAt: now,
	}

	if err := c.sessions.Set(ctx, sessionID, rec); err != nil {
		logger.Error("failed to persist session", map[string]any{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
		return nil, "", fmt.Errorf("flow: failed to persist session: %w", err)
	}

	return identity, it.ReturnURL, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, auth.ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, auth.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, auth.ErrUnknownOrExpiredState):
		return "unknown_or_expired_state"
	case errors.Is(err, auth.ErrNotAuthenticated):
		return "not_authenticated"
	default:
		return "internal"
	}
}
