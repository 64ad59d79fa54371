package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
	recordsUseCase "github.com/allisson/compvault/internal/records/usecase"
)

// RunAddRecord encrypts a value and stores it as a record.
func RunAddRecord(
	ctx context.Context,
	useCase recordsUseCase.RecordUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID, label, plaintext, password, format string,
) error {
	record, err := useCase.Create(ctx, &recordsDomain.CreateRecordInput{
		UserID:    userID,
		Label:     label,
		Plaintext: plaintext,
		Password:  password,
	})
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}

	logger.Info("record added", slog.String("record_id", record.ID.String()))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":         record.ID.String(),
			"user_id":    record.UserID,
			"label":      record.Label,
			"created_at": record.CreatedAt,
		})
	}
	_, _ = fmt.Fprintf(writer, "Record %s added\n", record.ID)
	return nil
}

// RunListRecords decrypts and prints every record of a user. Records that fail to
// decrypt are listed with the failure reason instead of a value.
func RunListRecords(
	ctx context.Context,
	useCase recordsUseCase.RecordUseCase,
	writer io.Writer,
	userID, password, format string,
) error {
	records, err := useCase.List(ctx, userID, password)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if format == "json" {
		type item struct {
			ID     string                        `json:"id"`
			Label  string                        `json:"label"`
			Result cryptoDomain.DecryptionResult `json:"result"`
		}
		items := make([]item, 0, len(records))
		for _, r := range records {
			items = append(items, item{ID: r.Record.ID.String(), Label: r.Record.Label, Result: r.Result})
		}
		return writeJSON(writer, items)
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLABEL\tVALUE")
	for _, r := range records {
		value := r.Result.Data
		if !r.Result.Success {
			value = fmt.Sprintf("<%s>", r.Result.Reason)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Record.ID, r.Record.Label, value)
	}
	return tw.Flush()
}

// RunAuditRecords runs the corrupted-record audit for a user and prints the report.
func RunAuditRecords(
	ctx context.Context,
	useCase recordsUseCase.RecordUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID, password string,
	dryRun bool,
	maxFailures int,
	format string,
) error {
	if maxFailures < 0 {
		return fmt.Errorf("max-failures must not be negative, got: %d", maxFailures)
	}

	report, err := useCase.Audit(ctx, userID, password, cryptoDomain.AuditOptions{
		DryRun:      dryRun,
		MaxFailures: maxFailures,
	})
	if err != nil {
		return fmt.Errorf("failed to audit records: %w", err)
	}

	logger.Info("audit completed",
		slog.Int("total", report.Total),
		slog.Int("failed", report.Failed),
		slog.Int("deleted", len(report.Deleted)),
		slog.Bool("dry_run", dryRun))

	if format == "json" {
		return writeJSON(writer, report)
	}

	_, _ = fmt.Fprintf(writer, "Audited %d record(s): %d decrypted, %d failed\n",
		report.Total, report.Succeeded, report.Failed)
	for _, failure := range report.Failures {
		_, _ = fmt.Fprintf(writer, "  %s: %s\n", failure.RecordID, failure.Reason)
	}
	switch {
	case len(report.Deleted) > 0:
		_, _ = fmt.Fprintf(writer, "Deleted %d corrupted record(s)\n", len(report.Deleted))
	case report.SkipReason != "":
		_, _ = fmt.Fprintf(writer, "Nothing deleted: %s\n", report.SkipReason)
	}
	for _, failure := range report.DeleteErrors {
		_, _ = fmt.Fprintf(writer, "  failed to delete %s: %s\n", failure.RecordID, failure.Error)
	}
	return nil
}

// VerifierChanger rotates the stored session verifier after a password change.
type VerifierChanger interface {
	ChangeVerifier(ctx context.Context, oldPassword, newPassword string) error
}

// RunChangePassword re-encrypts every record of a user under a new password. Either
// every record is updated or none is. The session verifier follows when verifier is
// non-nil.
func RunChangePassword(
	ctx context.Context,
	useCase recordsUseCase.RecordUseCase,
	verifier VerifierChanger,
	logger *slog.Logger,
	writer io.Writer,
	userID, oldPassword, newPassword, format string,
) error {
	output, err := useCase.ChangePassword(ctx, userID, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	logger.Info("password changed", slog.Int("updated", output.Updated))

	if verifier != nil {
		// Records are already committed under the new password.
		if err := verifier.ChangeVerifier(ctx, oldPassword, newPassword); err != nil {
			logger.Warn("failed to rotate session verifier", slog.Any("error", err))
		}
	}

	if format == "json" {
		return writeJSON(writer, output)
	}
	_, _ = fmt.Fprintf(writer, "Re-encrypted %d record(s) for user %s\n", output.Updated, output.UserID)
	return nil
}
