package auth

import "errors"

// Authentication failures are classified into a small fixed taxonomy.
// All of them are recoverable at the HTTP boundary; none is process-fatal.
var (
	// ErrNotAuthenticated means the session carries no identity. The
	// boundary layer turns it into a redirect to the login route.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnknownOrExpiredState means the callback's state token matched no
	// outstanding login intent. This is the anti-CSRF check, and also what
	// a replayed callback sees (intents are single-use).
	ErrUnknownOrExpiredState = errors.New("unknown or expired login state")

	// ErrServiceUnavailable means the external auth service could not be
	// reached or timed out. Callers decide on retry policy.
	ErrServiceUnavailable = errors.New("auth service unavailable")

	// ErrInvalidCredentials means the external auth service rejected the
	// presented code or token.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedResponse means the external auth service answered with a
	// payload that does not satisfy the user-info contract.
	ErrMalformedResponse = errors.New("malformed auth service response")
)
