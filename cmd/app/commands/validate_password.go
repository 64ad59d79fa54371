package commands

import (
	"fmt"
	"io"
	"strings"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
)

// RunValidatePassword reports the strength of a candidate password.
func RunValidatePassword(
	useCase cryptoUseCase.EncryptionUseCase,
	writer io.Writer,
	password, format string,
) error {
	strength := useCase.ValidatePassword(password)

	if format == "json" {
		return writeJSON(writer, strength)
	}

	verdict := "acceptable"
	if !strength.IsValid {
		verdict = "rejected"
	}
	_, _ = fmt.Fprintf(writer, "Password %s (score %d/%d)\n", verdict, strength.Score, cryptoDomain.MaxPasswordScore)
	if len(strength.Feedback) > 0 {
		_, _ = fmt.Fprintf(writer, "  - %s\n", strings.Join(strength.Feedback, "\n  - "))
	}
	return nil
}
