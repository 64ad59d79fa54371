// Package http provides HTTP handlers for the encryption service.
//
// Passwords arrive in the request body or, when omitted, come from the unlocked
// session. They are used for the current call only.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/crypto/http/dto"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
	"github.com/allisson/compvault/internal/httputil"
	"github.com/allisson/compvault/internal/session"
	customValidation "github.com/allisson/compvault/internal/validation"
)

// EncryptionHandler handles HTTP requests for encryption operations.
type EncryptionHandler struct {
	encryptionUseCase cryptoUseCase.EncryptionUseCase
	passwords         session.PasswordSource
	options           *cryptoDomain.Options
	logger            *slog.Logger
}

// NewEncryptionHandler creates a new encryption handler. opts carries the configured
// KDF parameters and may be nil.
func NewEncryptionHandler(
	encryptionUseCase cryptoUseCase.EncryptionUseCase,
	passwords session.PasswordSource,
	opts *cryptoDomain.Options,
	logger *slog.Logger,
) *EncryptionHandler {
	return &EncryptionHandler{
		encryptionUseCase: encryptionUseCase,
		passwords:         passwords,
		options:           opts,
		logger:            logger,
	}
}

// EncryptHandler encrypts a value.
// POST /v1/crypto/encrypt - Returns 200 OK with the envelope.
func (h *EncryptionHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest
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

	envelope, err := h.encryptionUseCase.EncryptData(c.Request.Context(), req.Plaintext, password, h.options)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// DecryptHandler decrypts one envelope.
// POST /v1/crypto/decrypt - Returns 200 OK with the decryption result, including
// failures. A wrong password is not an HTTP error.
func (h *EncryptionHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	password, err := session.ResolvePassword(req.Password, h.passwords)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result := h.encryptionUseCase.DecryptData(c.Request.Context(), &req.Envelope, password, h.options)
	c.JSON(http.StatusOK, result)
}

// BatchDecryptHandler decrypts many envelopes with one password.
// POST /v1/crypto/decrypt/batch - Returns 200 OK with one result per envelope.
func (h *EncryptionHandler) BatchDecryptHandler(c *gin.Context) {
	var req dto.BatchDecryptRequest
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

	results := h.encryptionUseCase.BatchDecryptData(
		c.Request.Context(),
		req.EnvelopePointers(),
		password,
		h.options,
	)
	c.JSON(http.StatusOK, dto.MapResultsToBatchResponse(results))
}

// ChangePasswordHandler re-encrypts one envelope under a new password.
// POST /v1/crypto/change-password - Returns 200 OK with the new envelope.
func (h *EncryptionHandler) ChangePasswordHandler(c *gin.Context) {
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

	envelope, err := h.encryptionUseCase.ChangePassword(
		c.Request.Context(),
		&req.Envelope,
		oldPassword,
		req.NewPassword,
		h.options,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// ValidatePasswordHandler scores a password.
// POST /v1/crypto/validate-password - Returns 200 OK with score and feedback.
func (h *EncryptionHandler) ValidatePasswordHandler(c *gin.Context) {
	var req dto.ValidatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, h.encryptionUseCase.ValidatePassword(req.Password))
}
