package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
)

// RunEncrypt encrypts plaintext and writes the envelope as JSON.
func RunEncrypt(
	ctx context.Context,
	useCase cryptoUseCase.EncryptionUseCase,
	opts *cryptoDomain.Options,
	logger *slog.Logger,
	writer io.Writer,
	plaintext, password string,
) error {
	envelope, err := useCase.EncryptData(ctx, plaintext, password, opts)
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	logger.Debug("value encrypted", slog.Int("ciphertext_length", len(envelope.EncryptedData)))
	return writeJSON(writer, envelope)
}
