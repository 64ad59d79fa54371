// Package usecase implements record management on top of the encryption service.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// RecordRepository defines the interface for record persistence.
type RecordRepository interface {
	AddRecord(ctx context.Context, record *recordsDomain.Record) error
	GetRecords(ctx context.Context, userID string) ([]*recordsDomain.Record, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)
	GetLatestRecord(ctx context.Context) (*recordsDomain.Record, error)
	UpdateEnvelope(ctx context.Context, id uuid.UUID, envelope *cryptoDomain.EncryptedEnvelope, updatedAt time.Time) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}

// RecordUseCase defines the business operations on encrypted records.
type RecordUseCase interface {
	// Create encrypts the plaintext and stores it as a new record.
	Create(ctx context.Context, input *recordsDomain.CreateRecordInput) (*recordsDomain.Record, error)

	// Get loads and decrypts one record. A wrong password is reported in the result.
	Get(ctx context.Context, id uuid.UUID, password string) (*recordsDomain.DecryptedRecord, error)

	// List loads and batch-decrypts every record of a user.
	List(ctx context.Context, userID, password string) ([]*recordsDomain.DecryptedRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, id uuid.UUID) error

	// Audit checks every record of a user and removes corrupted ones within tolerance.
	Audit(
		ctx context.Context,
		userID, password string,
		opts cryptoDomain.AuditOptions,
	) (*cryptoDomain.AuditReport, error)

	// CheckPassword reports whether password decrypts the most recently created record,
	// returning ErrDecryptionFailed when it does not. With no records it returns nil.
	CheckPassword(ctx context.Context, password string) error

	// ChangePassword re-encrypts all records of a user and writes them in one transaction.
	// Any record that cannot be decrypted with oldPassword aborts the whole change.
	ChangePassword(
		ctx context.Context,
		userID, oldPassword, newPassword string,
	) (*recordsDomain.ChangePasswordOutput, error)
}
