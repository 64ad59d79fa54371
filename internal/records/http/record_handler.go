// Package http provides HTTP handlers for encrypted record management.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/httputil"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
	"github.com/allisson/compvault/internal/records/http/dto"
	recordsUseCase "github.com/allisson/compvault/internal/records/usecase"
	"github.com/allisson/compvault/internal/session"
	customValidation "github.com/allisson/compvault/internal/validation"
)

// PasswordHeader carries the password on requests without a body.
const PasswordHeader = "X-Compvault-Password"

// VerifierChanger rotates the session verifier after a password change.
type VerifierChanger interface {
	ChangeVerifier(ctx context.Context, oldPassword, newPassword string) error
}

// RecordHandler handles HTTP requests for record operations.
type RecordHandler struct {
	recordUseCase      recordsUseCase.RecordUseCase
	passwords          session.PasswordSource
	verifier           VerifierChanger
	defaultMaxFailures int
	logger             *slog.Logger
}

// NewRecordHandler creates a new record handler. verifier may be nil when no session
// is configured.
func NewRecordHandler(
	recordUseCase recordsUseCase.RecordUseCase,
	passwords session.PasswordSource,
	verifier VerifierChanger,
	defaultMaxFailures int,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		recordUseCase:      recordUseCase,
		passwords:          passwords,
		verifier:           verifier,
		defaultMaxFailures: defaultMaxFailures,
		logger:             logger,
	}
}

// CreateHandler encrypts and stores a new record.
// POST /v1/records - Returns 201 Created with the stored record.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	password, err := session.ResolvePassword(req.Password, h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), &recordsDomain.CreateRecordInput{
		UserID:    req.UserID,
		Label:     req.Label,
		Plaintext: req.Plaintext,
		Password:  password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// ListHandler decrypts every record of a user.
// GET /v1/records?user_id=... - Returns 200 OK. Records that fail to decrypt are
// listed with a failed result.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("user_id: cannot be blank"), h.logger)
		return
	}

	password, err := session.ResolvePassword(c.GetHeader(PasswordHeader), h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	records, err := h.recordUseCase.List(c.Request.Context(), userID, password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecryptedRecordsToListResponse(records))
}

// GetHandler decrypts a single record.
// GET /v1/records/:id - Returns 200 OK with the record and its decryption result.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	password, err := session.ResolvePassword(c.GetHeader(PasswordHeader), h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	record, err := h.recordUseCase.Get(c.Request.Context(), recordID, password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecryptedRecordToResponse(record))
}

// DeleteHandler removes a record.
// DELETE /v1/records/:id - Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.Delete(c.Request.Context(), recordID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AuditHandler finds records that no longer decrypt and, unless dry_run is set,
// deletes them.
// POST /v1/records/audit - Returns 200 OK with the audit report.
func (h *RecordHandler) AuditHandler(c *gin.Context) {
	var req dto.AuditRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	password, err := session.ResolvePassword(req.Password, h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	opts := cryptoDomain.AuditOptions{
		DryRun:      req.DryRun,
		MaxFailures: h.defaultMaxFailures,
	}
	if req.MaxFailures != nil {
		opts.MaxFailures = *req.MaxFailures
	}

	report, err := h.recordUseCase.Audit(c.Request.Context(), req.UserID, password, opts)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ChangePasswordHandler re-encrypts every record of a user under a new password and
// rotates the session verifier.
// POST /v1/records/change-password - Returns 200 OK with the number of updated records.
func (h *RecordHandler) ChangePasswordHandler(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	oldPassword, err := session.ResolvePassword(req.OldPassword, h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	output, err := h.recordUseCase.ChangePassword(c.Request.Context(), req.UserID, oldPassword, req.NewPassword)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if h.verifier != nil {
		// Records are already committed under the new password.
		if err := h.verifier.ChangeVerifier(c.Request.Context(), oldPassword, req.NewPassword); err != nil {
			h.logger.Warn("failed to rotate session verifier",
				slog.String("user_id", req.UserID),
				slog.Any("error", err))
		}
	}

	c.JSON(http.StatusOK, output)
}

func (h *RecordHandler) parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid record ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return recordID, true
}
