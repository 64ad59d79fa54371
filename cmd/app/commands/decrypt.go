package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
)

// ErrDecryptionFailed is returned when the envelope could not be decrypted, so the
// process exits non-zero. The reason is written to the output.
var ErrDecryptionFailed = errors.New("decryption failed")

// RunDecrypt decrypts a JSON envelope read from reader. Text output is the bare
// plaintext; JSON output is the full decryption result.
func RunDecrypt(
	ctx context.Context,
	useCase cryptoUseCase.EncryptionUseCase,
	opts *cryptoDomain.Options,
	logger *slog.Logger,
	reader io.Reader,
	writer io.Writer,
	password, format string,
) error {
	var envelope cryptoDomain.EncryptedEnvelope
	if err := json.NewDecoder(reader).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to parse envelope: %w", err)
	}

	result := useCase.DecryptData(ctx, &envelope, password, opts)

	if format == "json" {
		if err := writeJSON(writer, result); err != nil {
			return err
		}
	} else if result.Success {
		_, _ = fmt.Fprintln(writer, result.Data)
	} else {
		_, _ = fmt.Fprintf(writer, "Decryption failed (%s): %s\n", result.Reason, result.Error)
	}

	if !result.Success {
		logger.Warn("decryption failed", slog.String("reason", string(result.Reason)))
		return ErrDecryptionFailed
	}
	return nil
}
