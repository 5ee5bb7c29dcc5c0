package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/botsarefuture/lac-go/internal/auth"
	"github.com/botsarefuture/lac-go/internal/session"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from context")
			return
		}
		fmt.Fprint(w, identity.SubjectID)
	})
}

func authedRequest(t *testing.T, store session.Store, rec session.Record) *http.Request {
	t.Helper()
	sessionID, err := session.GenerateID()
	if err != nil {
		t.Fatalf("GenerateID returned error: %v", err)
	}
	if err := store.Set(context.Background(), sessionID, rec); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	return r
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	store := session.NewMemoryStore(0)
	mw := NewAuthMiddleware(store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dashboard?tab=1", nil)

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if got, want := w.Header().Get("Location"), "/login?next=%2Fdashboard%3Ftab%3D1"; got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestRequireAuthRedirectsUnknownSession(t *testing.T) {
	store := session.NewMemoryStore(0)
	mw := NewAuthMiddleware(store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
}

func TestRequireAuthPassesIdentity(t *testing.T) {
	store := session.NewMemoryStore(0)
	mw := NewAuthMiddleware(store)

	r := authedRequest(t, store, session.Record{
		Identity: &auth.Identity{SubjectID: "u1"},
		IssuedAt: time.Now(),
	})
	w := httptest.NewRecorder()

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "u1" {
		t.Fatalf("body = %q, want %q", w.Body.String(), "u1")
	}
}

func TestRequireAuthCustomLoginPath(t *testing.T) {
	store := session.NewMemoryStore(0)
	mw := &AuthMiddleware{Store: store, LoginPath: "/auth/start"}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/secret", nil)

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if got, want := w.Header().Get("Location"), "/auth/start?next=%2Fsecret"; got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, string) error {
	s.calls++
	return s.err
}

func TestRequireAuthReverifyRejectedToken(t *testing.T) {
	store := session.NewMemoryStore(0)
	verifier := &stubVerifier{err: auth.ErrInvalidCredentials}
	mw := &AuthMiddleware{
		Store:         store,
		Verifier:      verifier,
		ReverifyEvery: time.Minute,
	}

	r := authedRequest(t, store, session.Record{
		Identity:   &auth.Identity{SubjectID: "u1"},
		Token:      "tok",
		IssuedAt:   time.Now().Add(-time.Hour),
		VerifiedAt: time.Now().Add(-time.Hour),
	})
	w := httptest.NewRecorder()

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want redirect %d", w.Code, http.StatusFound)
	}
	if verifier.calls != 1 {
		t.Fatalf("verifier calls = %d, want 1", verifier.calls)
	}

	sessionID := r.Cookies()[0].Value
	rec, err := store.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec != nil {
		t.Fatal("expected session to be destroyed after rejected token")
	}
}

func TestRequireAuthReverifyUnavailable(t *testing.T) {
	store := session.NewMemoryStore(0)
	mw := &AuthMiddleware{
		Store:         store,
		Verifier:      &stubVerifier{err: auth.ErrServiceUnavailable},
		ReverifyEvery: time.Minute,
	}

	r := authedRequest(t, store, session.Record{
		Identity:   &auth.Identity{SubjectID: "u1"},
		Token:      "tok",
		VerifiedAt: time.Now().Add(-time.Hour),
	})
	w := httptest.NewRecorder()

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestRequireAuthSkipsFreshVerification(t *testing.T) {
	store := session.NewMemoryStore(0)
	verifier := &stubVerifier{}
	mw := &AuthMiddleware{
		Store:         store,
		Verifier:      verifier,
		ReverifyEvery: time.Hour,
	}

	r := authedRequest(t, store, session.Record{
		Identity:   &auth.Identity{SubjectID: "u1"},
		Token:      "tok",
		VerifiedAt: time.Now(),
	})
	w := httptest.NewRecorder()

	mw.RequireAuth(protectedEcho(t)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if verifier.calls != 0 {
		t.Fatalf("verifier calls = %d, want 0", verifier.calls)
	}
}
