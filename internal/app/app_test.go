package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/botsarefuture/lac-go/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		AppPort:          "0",
		AppID:            "app1",
		AuthServiceURL:   "https://auth.example.com",
		LoginIntentTTL:   10 * time.Minute,
		SessionTTL:       24 * time.Hour,
		AuthTimeout:      time.Second,
		ReverifyInterval: 5 * time.Minute,
		// RedisAddr intentionally empty: the app must come up on the
		// in-memory stores alone.
	}
}

func TestSetupHTTPWithoutRedis(t *testing.T) {
	router, cleanup, err := setupHTTP(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("setupHTTP returned error: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/health status = %d, want %d", w.Code, http.StatusOK)
	}

	// Login must hand out the external redirect off the memory intent store.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("/login status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "https://auth.example.com/authorize?") {
		t.Fatalf("/login Location = %q, want authorize URL", loc)
	}

	// Protected routes still redirect anonymous users.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("/api/me status = %d, want %d", w.Code, http.StatusFound)
	}

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup returned error: %v", err)
	}
}

func TestAppShutdownWithoutRedis(t *testing.T) {
	application, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// Shutdown on a never-started server still runs the store cleanup,
	// including closing the memory intent store's sweeper.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
