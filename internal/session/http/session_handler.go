// Package http provides HTTP handlers for the password session.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/compvault/internal/httputil"
	"github.com/allisson/compvault/internal/session"
	customValidation "github.com/allisson/compvault/internal/validation"
)

// SessionManager is the subset of session.Manager the handlers need.
type SessionManager interface {
	Unlock(ctx context.Context, password string, window time.Duration) (session.Status, error)
	Lock()
	Status() session.Status
}

// UnlockRequest contains the password and an optional window in minutes.
type UnlockRequest struct {
	Password      string `json:"password"`
	WindowMinutes int    `json:"window_minutes,omitempty"`
}

// Validate checks if the unlock request is valid.
func (r *UnlockRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, customValidation.MinPasswordLength),
		validation.Field(&r.WindowMinutes, validation.Min(0)),
	)
}

// SessionHandler handles HTTP requests for the password session.
type SessionHandler struct {
	manager SessionManager
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager SessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  logger,
	}
}

// UnlockHandler verifies the password and holds it for the session window.
// POST /v1/session/unlock - Returns 200 OK with the session status.
func (h *SessionHandler) UnlockHandler(c *gin.Context) {
	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := h.manager.Unlock(
		c.Request.Context(),
		req.Password,
		time.Duration(req.WindowMinutes)*time.Minute,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("session unlocked")
	c.JSON(http.StatusOK, status)
}

// LockHandler purges the password and wipes cached keys.
// POST /v1/session/lock - Returns 200 OK with the session status.
func (h *SessionHandler) LockHandler(c *gin.Context) {
	h.manager.Lock()
	h.logger.Info("session locked")
	c.JSON(http.StatusOK, h.manager.Status())
}

// StatusHandler reports whether the session is unlocked.
// GET /v1/session - Returns 200 OK with the session status.
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Status())
}
