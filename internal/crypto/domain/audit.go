package domain

import "github.com/google/uuid"

// StoredEnvelope pairs an envelope with the identifier its record store knows it by.
type StoredEnvelope struct {
	ID       uuid.UUID
	Envelope EncryptedEnvelope
}

// AuditOptions controls the corrupted-record audit.
//
// Corrupted records are deleted only when DryRun is false and the number of failures is
// at most MaxFailures. Above the tolerance nothing is deleted and manual intervention
// is required.
type AuditOptions struct {
	DryRun      bool
	MaxFailures int
	KDFParams   *KDFParams
}

// SkipReason explains why an audit with failures deleted nothing.
type SkipReason string

const (
	SkipDryRun            SkipReason = "dry_run"
	SkipToleranceExceeded SkipReason = "tolerance_exceeded"
	SkipNoRecordDecrypted SkipReason = "no_record_decrypted"
)

// AuditFailure describes a record that could not be decrypted or deleted.
type AuditFailure struct {
	RecordID uuid.UUID     `json:"record_id"`
	Reason   FailureReason `json:"reason"`
	Error    string        `json:"error"`
}

// AuditReport summarizes an audit run.
type AuditReport struct {
	Total             int            `json:"total"`
	Succeeded         int            `json:"succeeded"`
	Failed            int            `json:"failed"`
	Failures          []AuditFailure `json:"failures"`
	Deleted           []uuid.UUID    `json:"deleted"`
	DeleteErrors      []AuditFailure `json:"delete_errors,omitempty"`
	DryRun            bool           `json:"dry_run"`
	ToleranceExceeded bool           `json:"tolerance_exceeded"`
	SkipReason        SkipReason     `json:"skip_reason,omitempty"`
}
