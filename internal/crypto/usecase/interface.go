// Package usecase implements the encryption service: the record-oriented façade over
// key derivation, the key cache and the AEAD primitives.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// KeyCache is the derived-key cache consumed by the encryption service.
type KeyCache interface {
	// GetOrDeriveKey returns a copy of the key for (password, salt, params) that the
	// caller must zero after use.
	GetOrDeriveKey(ctx context.Context, password, salt []byte, params cryptoDomain.KDFParams) ([]byte, error)

	// DeriveKeys returns a key or error per distinct salt, keyed by string(salt). The
	// caller zeroes every returned key.
	DeriveKeys(
		ctx context.Context,
		password []byte,
		salts [][]byte,
		params cryptoDomain.KDFParams,
	) map[string]cryptoDomain.DerivedKey

	// InvalidateAll drops every cached key.
	InvalidateAll()
}

// RecordDeleter removes a stored record. It is the only storage capability the audit needs.
type RecordDeleter interface {
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}

// EncryptionUseCase is the only entry point other components use for record encryption.
//
// Passwords are accepted per call and never retained beyond it. Derived keys are
// obtained from the key cache and zeroed before each method returns.
type EncryptionUseCase interface {
	// EncryptData encrypts plaintext under a key derived from password and a fresh salt.
	//
	// Returns ErrEmptyData for empty plaintext and ErrWeakPassword for passwords shorter
	// than 8 characters. Every call produces a new salt and IV, even for the same input.
	EncryptData(
		ctx context.Context,
		plaintext, password string,
		opts *cryptoDomain.Options,
	) (*cryptoDomain.EncryptedEnvelope, error)

	// DecryptData decrypts one envelope. Expected failures (malformed envelope, wrong
	// password, tampered data) are reported in the result, never as an error.
	DecryptData(
		ctx context.Context,
		envelope *cryptoDomain.EncryptedEnvelope,
		password string,
		opts *cryptoDomain.Options,
	) cryptoDomain.DecryptionResult

	// ChangePassword decrypts envelope with oldPassword and re-encrypts the plaintext with
	// newPassword under a fresh salt and IV. The whole key cache is invalidated once the
	// old password has been verified.
	ChangePassword(
		ctx context.Context,
		envelope *cryptoDomain.EncryptedEnvelope,
		oldPassword, newPassword string,
		opts *cryptoDomain.Options,
	) (*cryptoDomain.EncryptedEnvelope, error)

	// BatchDecryptData decrypts many envelopes with one password. Keys are derived once
	// per distinct salt and records are decrypted concurrently. The result slice matches
	// the input 1:1 in length and order; one bad record never aborts the batch.
	BatchDecryptData(
		ctx context.Context,
		envelopes []*cryptoDomain.EncryptedEnvelope,
		password string,
		opts *cryptoDomain.Options,
	) []cryptoDomain.DecryptionResult

	// ValidatePassword scores password strength from 0 to 4.
	ValidatePassword(password string) cryptoDomain.PasswordStrength

	// AuditAndCleanupCorruptedRecords tries to decrypt every record and reports the ones
	// that fail. Corrupted records are deleted only when opts.DryRun is false and the
	// failure count does not exceed opts.MaxFailures.
	AuditAndCleanupCorruptedRecords(
		ctx context.Context,
		records []cryptoDomain.StoredEnvelope,
		password string,
		opts cryptoDomain.AuditOptions,
	) (*cryptoDomain.AuditReport, error)
}
