// Package domain defines the stored compensation record.
//
// A record pairs non-sensitive metadata (owner and label) with an encrypted envelope.
// The store never sees plaintext or passwords.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// Record is one encrypted compensation entry.
type Record struct {
	ID        uuid.UUID
	UserID    string
	Label     string
	Envelope  cryptoDomain.EncryptedEnvelope
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredEnvelope adapts the record for the corrupted-record audit.
func (r *Record) StoredEnvelope() cryptoDomain.StoredEnvelope {
	return cryptoDomain.StoredEnvelope{ID: r.ID, Envelope: r.Envelope}
}

// DecryptedRecord is a record together with the outcome of decrypting it.
type DecryptedRecord struct {
	Record *Record
	Result cryptoDomain.DecryptionResult
}

// CreateRecordInput holds the data needed to encrypt and store a record.
type CreateRecordInput struct {
	UserID    string
	Label     string
	Plaintext string
	Password  string
}

// ChangePasswordOutput reports a completed re-encryption.
type ChangePasswordOutput struct {
	UserID  string `json:"user_id"`
	Updated int    `json:"updated"`
}
