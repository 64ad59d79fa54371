package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/metrics"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", operation, status)
	r.metrics.RecordDuration(ctx, "records", operation, time.Since(start), status)
}

// Create records metrics for record creation.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Create(ctx, input)
	r.record(ctx, "record_create", start, err)
	return record, err
}

// Get records metrics for record retrieval.
func (r *recordUseCaseWithMetrics) Get(
	ctx context.Context,
	id uuid.UUID,
	password string,
) (*recordsDomain.DecryptedRecord, error) {
	start := time.Now()
	record, err := r.next.Get(ctx, id, password)
	r.record(ctx, "record_get", start, err)
	return record, err
}

// List records metrics for record listing.
func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	userID, password string,
) ([]*recordsDomain.DecryptedRecord, error) {
	start := time.Now()
	records, err := r.next.List(ctx, userID, password)
	r.record(ctx, "record_list", start, err)
	return records, err
}

// Delete records metrics for record deletion.
func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.record(ctx, "record_delete", start, err)
	return err
}

// Audit records metrics for record audits.
func (r *recordUseCaseWithMetrics) Audit(
	ctx context.Context,
	userID, password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	start := time.Now()
	report, err := r.next.Audit(ctx, userID, password, opts)
	r.record(ctx, "record_audit", start, err)
	return report, err
}

// CheckPassword records metrics for the first-unlock password check.
func (r *recordUseCaseWithMetrics) CheckPassword(ctx context.Context, password string) error {
	start := time.Now()
	err := r.next.CheckPassword(ctx, password)
	r.record(ctx, "record_check_password", start, err)
	return err
}

// ChangePassword records metrics for bulk re-encryption.
func (r *recordUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) (*recordsDomain.ChangePasswordOutput, error) {
	start := time.Now()
	output, err := r.next.ChangePassword(ctx, userID, oldPassword, newPassword)
	r.record(ctx, "record_change_password", start, err)
	return output, err
}
