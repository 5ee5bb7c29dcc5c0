package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/botsarefuture/lac-go/internal/auth"
	"github.com/botsarefuture/lac-go/internal/auth/flow"
	"github.com/botsarefuture/lac-go/internal/logger"
	"github.com/botsarefuture/lac-go/internal/session"
)

// RemoteLogout revokes a token at the external auth service.
type RemoteLogout interface {
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	flow       *flow.Controller
	sessions   session.Store
	remote     RemoteLogout
	sessionTTL time.Duration
}

func NewHandler(
	fc *flow.Controller,
	sessions session.Store,
	remote RemoteLogout,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		flow:       fc,
		sessions:   sessions,
		remote:     remote,
		sessionTTL: sessionTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/login", h.login)
	r.GET("/auth/callback", h.callback)
	r.GET("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	next := c.Query("next")

	redirectURL, err := h.flow.BeginLogin(c.Request.Context(), next)
	if err != nil {
		logger.Error("failed to begin login", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to begin login",
		})
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

func (h *Handler) callback(c *gin.Context) {
	// Auth service reported a failure instead of a code. Send the user back
	// to start a fresh flow.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("auth callback returned error", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		logger.Error("auth callback missing state or code", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	// A fresh session ID on every completed login; the anonymous session,
	// if any, is never promoted.
	sessionID, err := session.GenerateID()
	if err != nil {
		logger.Error("failed to generate session id", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	identity, returnTo, err := h.flow.CompleteLogin(
		c.Request.Context(),
		sessionID,
		state,
		code,
	)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "authentication failed"})
		return
	}

	session.SetCookie(
		c.Writer,
		sessionID,
		time.Now().Add(h.sessionTTL),
		session.CookieOptions{
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
	)

	logger.Info("login completed", map[string]any{
		"subject_id": identity.SubjectID,
	})

	if returnTo == "" {
		returnTo = "/"
	}
	c.Redirect(http.StatusFound, returnTo)
}

func (h *Handler) logout(c *gin.Context) {
	sessionID := session.ReadCookie(c.Request)

	if sessionID != "" {
		// Revoke remotely first, best-effort. The local session is cleared
		// regardless.
		if h.remote != nil {
			if rec, err := h.sessions.Get(c.Request.Context(), sessionID); err == nil &&
				rec != nil && rec.Token != "" {
				if err := h.remote.Logout(c.Request.Context(), rec.Token); err != nil {
					logger.Warn("remote logout failed", map[string]any{
						"error": err.Error(),
					})
				}
			}
		}

		if err := session.Logout(c.Request.Context(), h.sessions, sessionID); err != nil {
			logger.Error("failed to clear session", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Redirect(http.StatusFound, "/")
}

// statusFor maps the auth error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnknownOrExpiredState),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrServiceUnavailable),
		errors.Is(err, auth.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
