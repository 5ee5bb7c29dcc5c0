package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/botsarefuture/lac-go/internal/auth"
	"github.com/botsarefuture/lac-go/internal/logger"
	"github.com/botsarefuture/lac-go/internal/session"
)

const DefaultLoginPath = "/login"

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// TokenVerifier re-checks a session's token against the external auth
// service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) error
}

// AuthMiddleware guards routes behind a session identity. Composition is
// explicit: callers wrap whatever they want protected, and an anonymous
// request is redirected to the login route with the original URL as ?next=.
type AuthMiddleware struct {
	Store session.Store

	// LoginPath is where anonymous requests are sent. Empty means
	// DefaultLoginPath.
	LoginPath string

	// Verifier, when set, re-validates the session token against the auth
	// service once ReverifyEvery has elapsed since the last check. A
	// rejected token destroys the session.
	Verifier      TokenVerifier
	ReverifyEvery time.Duration
}

func NewAuthMiddleware(store session.Store) *AuthMiddleware {
	return &AuthMiddleware{Store: store}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.ReadCookie(r)
		if sessionID == "" {
			a.redirectToLogin(w, r)
			return
		}

		rec, err := a.Store.Get(r.Context(), sessionID)
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"error": err.Error(),
			})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if rec == nil || rec.Identity == nil {
			a.redirectToLogin(w, r)
			return
		}

		if a.Verifier != nil && a.ReverifyEvery > 0 &&
			time.Since(rec.VerifiedAt) > a.ReverifyEvery {
			if !a.reverify(w, r, sessionID, rec) {
				return
			}
		}

		ctx := context.WithValue(r.Context(), identityKey, rec.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reverify re-checks the session token remotely. Returns false when it has
// already written a response.
func (a *AuthMiddleware) reverify(
	w http.ResponseWriter,
	r *http.Request,
	sessionID string,
	rec *session.Record,
) bool {
	err := a.Verifier.Verify(r.Context(), rec.Token)

	if errors.Is(err, auth.ErrServiceUnavailable) {
		logger.Error("token verification unavailable", map[string]any{
			"error": err.Error(),
		})
		http.Error(w, "auth service unavailable", http.StatusBadGateway)
		return false
	}

	if err != nil {
		logger.Warn("session token rejected", map[string]any{
			"error": err.Error(),
		})
		_ = a.Store.Delete(r.Context(), sessionID)
		session.ClearCookie(w, session.CookieOptions{
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		a.redirectToLogin(w, r)
		return false
	}

	rec.VerifiedAt = time.Now()
	if err := a.Store.Set(r.Context(), sessionID, *rec); err != nil {
		logger.Error("failed to record verification time", map[string]any{
			"error": err.Error(),
		})
	}
	return true
}

func (a *AuthMiddleware) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginPath := a.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	target := loginPath
	if next := r.URL.RequestURI(); next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}

	http.Redirect(w, r, target, http.StatusFound)
}
