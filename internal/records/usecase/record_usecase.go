package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
	"github.com/allisson/compvault/internal/database"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// recordUseCase implements RecordUseCase.
type recordUseCase struct {
	txManager  database.TxManager
	repository RecordRepository
	encryption cryptoUseCase.EncryptionUseCase
	options    *cryptoDomain.Options
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return recordsDomain.ErrUserIDRequired
	}
	return nil
}

// Create encrypts the plaintext and stores it as a new record.
func (r *recordUseCase) Create(
	ctx context.Context,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	if err := requireUserID(input.UserID); err != nil {
		return nil, err
	}

	envelope, err := r.encryption.EncryptData(ctx, input.Plaintext, input.Password, r.options)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &recordsDomain.Record{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    input.UserID,
		Label:     input.Label,
		Envelope:  *envelope,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.repository.AddRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get loads and decrypts one record.
func (r *recordUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
	password string,
) (*recordsDomain.DecryptedRecord, error) {
	record, err := r.repository.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	result := r.encryption.DecryptData(ctx, &record.Envelope, password, r.options)
	return &recordsDomain.DecryptedRecord{Record: record, Result: result}, nil
}

// List loads and batch-decrypts every record of a user.
func (r *recordUseCase) List(
	ctx context.Context,
	userID, password string,
) ([]*recordsDomain.DecryptedRecord, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	records, err := r.repository.GetRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	envelopes := make([]*cryptoDomain.EncryptedEnvelope, len(records))
	for i, record := range records {
		envelopes[i] = &record.Envelope
	}

	results := r.encryption.BatchDecryptData(ctx, envelopes, password, r.options)

	decrypted := make([]*recordsDomain.DecryptedRecord, len(records))
	for i, record := range records {
		decrypted[i] = &recordsDomain.DecryptedRecord{Record: record, Result: results[i]}
	}
	return decrypted, nil
}

// Delete removes a record.
func (r *recordUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repository.DeleteRecord(ctx, id)
}

// Audit checks every record of a user and removes corrupted ones within tolerance.
func (r *recordUseCase) Audit(
	ctx context.Context,
	userID, password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	records, err := r.repository.GetRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored := make([]cryptoDomain.StoredEnvelope, len(records))
	for i, record := range records {
		stored[i] = record.StoredEnvelope()
	}

	if opts.KDFParams == nil && r.options != nil {
		opts.KDFParams = r.options.KDFParams
	}
	return r.encryption.AuditAndCleanupCorruptedRecords(ctx, stored, password, opts)
}

// CheckPassword decrypts the most recent record with password. A store without records
// accepts any password.
func (r *recordUseCase) CheckPassword(ctx context.Context, password string) error {
	record, err := r.repository.GetLatestRecord(ctx)
	if err != nil {
		if errors.Is(err, recordsDomain.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	result := r.encryption.DecryptData(ctx, &record.Envelope, password, r.options)
	if !result.Success && result.Reason == cryptoDomain.ReasonDecryptionFailed {
		return cryptoDomain.ErrDecryptionFailed
	}
	return nil
}

// ChangePassword re-encrypts all records of a user. The derivations run before the
// transaction; inside it the records are re-read and must match the snapshot that was
// re-encrypted, otherwise ErrRecordsChanged is returned and nothing is written.
func (r *recordUseCase) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) (*recordsDomain.ChangePasswordOutput, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	records, err := r.repository.GetRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	envelopes := make([]*cryptoDomain.EncryptedEnvelope, len(records))
	for i, record := range records {
		envelope, err := r.encryption.ChangePassword(ctx, &record.Envelope, oldPassword, newPassword, r.options)
		if err != nil {
			return nil, err
		}
		envelopes[i] = envelope
	}

	output := &recordsDomain.ChangePasswordOutput{UserID: userID}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := r.repository.GetRecords(ctx, userID)
		if err != nil {
			return err
		}
		if !sameEnvelopes(records, current) {
			return recordsDomain.ErrRecordsChanged
		}

		now := time.Now().UTC()
		for i, record := range records {
			if err := r.repository.UpdateEnvelope(ctx, record.ID, envelopes[i], now); err != nil {
				return err
			}
			output.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}

func sameEnvelopes(a, b []*recordsDomain.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Envelope != b[i].Envelope {
			return false
		}
	}
	return true
}

// NewRecordUseCase creates a new RecordUseCase. opts carries the KDF parameters applied
// to every encryption and decryption; nil selects the defaults.
func NewRecordUseCase(
	txManager database.TxManager,
	repository RecordRepository,
	encryption cryptoUseCase.EncryptionUseCase,
	opts *cryptoDomain.Options,
) RecordUseCase {
	return &recordUseCase{
		txManager:  txManager,
		repository: repository,
		encryption: encryption,
		options:    opts,
	}
}
