package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/metrics"
)

// encryptionUseCaseWithMetrics decorates EncryptionUseCase with metrics instrumentation.
type encryptionUseCaseWithMetrics struct {
	next    EncryptionUseCase
	metrics metrics.BusinessMetrics
}

// NewEncryptionUseCaseWithMetrics wraps an EncryptionUseCase with metrics recording.
func NewEncryptionUseCaseWithMetrics(useCase EncryptionUseCase, m metrics.BusinessMetrics) EncryptionUseCase {
	return &encryptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *encryptionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "crypto", operation, status)
	e.metrics.RecordDuration(ctx, "crypto", operation, time.Since(start), status)
}

// EncryptData records metrics for encryption operations.
func (e *encryptionUseCaseWithMetrics) EncryptData(
	ctx context.Context,
	plaintext, password string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptData(ctx, plaintext, password, opts)
	e.record(ctx, "encrypt", start, err == nil)
	return envelope, err
}

// DecryptData records metrics for decryption operations. A failed result counts as an error.
func (e *encryptionUseCaseWithMetrics) DecryptData(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) cryptoDomain.DecryptionResult {
	start := time.Now()
	result := e.next.DecryptData(ctx, envelope, password, opts)
	e.record(ctx, "decrypt", start, result.Success)
	return result
}

// ChangePassword records metrics for password change operations.
func (e *encryptionUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	oldPassword, newPassword string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	start := time.Now()
	out, err := e.next.ChangePassword(ctx, envelope, oldPassword, newPassword, opts)
	e.record(ctx, "change_password", start, err == nil)
	return out, err
}

// BatchDecryptData records metrics for batch decryption. The batch is an error when any
// record failed.
func (e *encryptionUseCaseWithMetrics) BatchDecryptData(
	ctx context.Context,
	envelopes []*cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) []cryptoDomain.DecryptionResult {
	start := time.Now()
	results := e.next.BatchDecryptData(ctx, envelopes, password, opts)

	ok := true
	for _, r := range results {
		if !r.Success {
			ok = false
			break
		}
	}
	e.record(ctx, "batch_decrypt", start, ok)
	return results
}

// ValidatePassword records metrics for password strength checks.
func (e *encryptionUseCaseWithMetrics) ValidatePassword(password string) cryptoDomain.PasswordStrength {
	start := time.Now()
	strength := e.next.ValidatePassword(password)
	e.record(context.Background(), "validate_password", start, true)
	return strength
}

// AuditAndCleanupCorruptedRecords records metrics for audit runs.
func (e *encryptionUseCaseWithMetrics) AuditAndCleanupCorruptedRecords(
	ctx context.Context,
	records []cryptoDomain.StoredEnvelope,
	password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	start := time.Now()
	report, err := e.next.AuditAndCleanupCorruptedRecords(ctx, records, password, opts)
	e.record(ctx, "audit_records", start, err == nil)
	return report, err
}
