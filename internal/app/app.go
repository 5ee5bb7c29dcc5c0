package app

import (
	"context"
	"net/http"

	"github.com/botsarefuture/lac-go/internal/config"
)

// App is the assembled HTTP application: the gin router from setupHTTP
// behind an http.Server, plus the cleanup for whatever stores were wired.
type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New wires stores, flow controller, handlers and middleware from cfg.
// Without REDIS_ADDR the app runs entirely on the in-memory stores.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppPort,
			Handler: router,
		},
		cleanup: cleanup,
	}, nil
}

// Run blocks serving HTTP until the server is shut down.
func (a *App) Run() error {
	return a.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the stores.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
