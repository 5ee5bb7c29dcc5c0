package intent

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultTTL bounds how long a login intent stays redeemable.
const DefaultTTL = 10 * time.Minute

// Intent correlates an in-progress external login with its anti-forgery
// state token. It lives only between BeginLogin and the matching
// CompleteLogin, and is strictly single-use.
type Intent struct {
	State     string    `json:"state"`
	AppID     string    `json:"app_id"`
	ReturnURL string    `json:"return_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the intent's TTL has elapsed.
func (i Intent) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Store holds pending login intents keyed by state. It is shared, mutable,
// process-wide state accessed by concurrent in-flight requests, so
// implementations must support concurrent Put/Consume with at-most-once
// consumption per state.
type Store interface {
	// Put inserts the intent keyed by its state token.
	Put(ctx context.Context, it Intent) error

	// Consume removes and returns the intent for the given state. Expired
	// or unknown states return ok=false. The removal happens regardless of
	// what the caller does next; a second Consume for the same state always
	// misses.
	Consume(ctx context.Context, state string) (Intent, bool, error)
}

// NewState generates a fresh unguessable state token.
// 32 bytes = 256 bits of entropy.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("intent: failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
