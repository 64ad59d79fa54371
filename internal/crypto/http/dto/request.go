// Package dto provides data transfer objects for the encryption endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	customValidation "github.com/allisson/compvault/internal/validation"
)

// MaxBatchSize bounds the number of envelopes in one batch request.
const MaxBatchSize = 1000

// EncryptRequest contains the parameters for encrypting a value.
// Password may be omitted when the session is unlocked.
type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
	Password  string `json:"password,omitempty"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext, validation.Required),
		validation.Field(&r.Password, customValidation.MinPasswordLength),
	)
}

// DecryptRequest contains an envelope to decrypt. The envelope is not validated here:
// structural problems are reported in the decryption result.
type DecryptRequest struct {
	Envelope cryptoDomain.EncryptedEnvelope `json:"envelope"`
	Password string                         `json:"password,omitempty"`
}

// BatchDecryptRequest contains envelopes to decrypt with one password.
type BatchDecryptRequest struct {
	Envelopes []cryptoDomain.EncryptedEnvelope `json:"envelopes"`
	Password  string                           `json:"password,omitempty"`
}

// Validate checks if the batch request is valid.
func (r *BatchDecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Envelopes, validation.Required, validation.Length(1, MaxBatchSize)),
	)
}

// EnvelopePointers returns pointers into the request's envelopes.
func (r *BatchDecryptRequest) EnvelopePointers() []*cryptoDomain.EncryptedEnvelope {
	envelopes := make([]*cryptoDomain.EncryptedEnvelope, len(r.Envelopes))
	for i := range r.Envelopes {
		envelopes[i] = &r.Envelopes[i]
	}
	return envelopes
}

// ChangePasswordRequest contains an envelope to re-encrypt under a new password.
// OldPassword may be omitted when the session is unlocked.
type ChangePasswordRequest struct {
	Envelope    cryptoDomain.EncryptedEnvelope `json:"envelope"`
	OldPassword string                         `json:"old_password,omitempty"`
	NewPassword string                         `json:"new_password"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NewPassword, validation.Required, customValidation.MinPasswordLength),
	)
}

// ValidatePasswordRequest contains a password to score.
type ValidatePasswordRequest struct {
	Password string `json:"password"`
}

// Validate checks if the validate password request is valid.
func (r *ValidatePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required),
	)
}
