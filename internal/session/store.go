package session

import (
	"context"
	"time"

	"github.com/botsarefuture/lac-go/internal/auth"
)

// Record is the per-session state owned by the session store.
// It holds at most one Identity, created on first successful login
// completion and destroyed on logout or store-side expiry.
type Record struct {
	Identity *auth.Identity `json:"identity,omitempty"`
	// Token is the opaque credential issued by the auth service, kept only
	// for remote verify/logout calls.
	Token      string    `json:"token,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Store defines how session records are stored and retrieved, keyed by an
// opaque session ID. Implementations (e.g., Redis) must remain stateless
// and opaque; expiry policy belongs to the store, not the callers.
type Store interface {
	// Get returns the record for sessionID, or nil if none exists.
	Get(ctx context.Context, sessionID string) (*Record, error)
	Set(ctx context.Context, sessionID string, rec Record) error
	Delete(ctx context.Context, sessionID string) error
}
