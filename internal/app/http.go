package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/botsarefuture/lac-go/internal/auth/client"
	"github.com/botsarefuture/lac-go/internal/auth/flow"
	"github.com/botsarefuture/lac-go/internal/auth/handler"
	"github.com/botsarefuture/lac-go/internal/auth/intent"
	"github.com/botsarefuture/lac-go/internal/config"
	"github.com/botsarefuture/lac-go/internal/middleware"
	"github.com/botsarefuture/lac-go/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	var (
		sessionStore session.Store
		intentStore  intent.Store
		memIntents   *intent.MemoryStore
	)

	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client, cfg.SessionTTL)
		intentStore = intent.NewRedisStore(infra.Redis.Client)
	} else {
		sessionStore = session.NewMemoryStore(cfg.SessionTTL)
		memIntents = intent.NewMemoryStore(time.Minute)
		intentStore = memIntents
	}

	authClient := client.New(cfg.AuthServiceURL, cfg.AuthTimeout)

	flowController := flow.New(
		cfg.AppID,
		cfg.AuthServiceURL,
		cfg.LoginIntentTTL,
		intentStore,
		sessionStore,
		authClient,
	)

	authHandler := handler.NewHandler(
		flowController,
		sessionStore,
		authClient,
		cfg.SessionTTL,
	)

	authMiddleware := &middleware.AuthMiddleware{
		Store:         sessionStore,
		Verifier:      authClient,
		ReverifyEvery: cfg.ReverifyInterval,
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		identity, ok := middleware.IdentityFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"subject_id":   identity.SubjectID,
			"display_name": identity.DisplayName,
			"claims":       identity.Claims,
		})
	})

	admin := router.Group("/admin")
	admin.Use(
		middleware.GinRequireAuth(authMiddleware),
		middleware.GinRequireRole(2),
	)

	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if memIntents != nil {
			memIntents.Close()
		}
		if infra.Redis != nil {
			return infra.Redis.Close()
		}
		return nil
	}, nil
}
