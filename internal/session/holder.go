package session

import (
	"context"

	"github.com/botsarefuture/lac-go/internal/auth"
)

// CurrentIdentity returns the Identity attached to the session, or nil when
// the session is anonymous. Pure read, no side effects.
func CurrentIdentity(ctx context.Context, s Store, sessionID string) (*auth.Identity, error) {
	if sessionID == "" {
		return nil, nil
	}

	rec, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	return rec.Identity, nil
}

// RequireAuthentication returns the session's Identity, or
// auth.ErrNotAuthenticated for the boundary layer to turn into a redirect.
func RequireAuthentication(ctx context.Context, s Store, sessionID string) (*auth.Identity, error) {
	id, err := CurrentIdentity(ctx, s, sessionID)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return id, nil
}

// Logout clears the session record. Idempotent: logging out an anonymous or
// unknown session is not an error.
func Logout(ctx context.Context, s Store, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Delete(ctx, sessionID)
}
