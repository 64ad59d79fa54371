// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"golang.org/x/term"

	"github.com/allisson/compvault/internal/app"
)

const (
	// PasswordEnvVar lets scripts supply the password without a prompt.
	PasswordEnvVar = "COMPVAULT_PASSWORD"
	// NewPasswordEnvVar supplies the new password of change-password without a prompt.
	NewPasswordEnvVar = "COMPVAULT_NEW_PASSWORD"
)

// ErrPasswordMismatch is returned when the confirmation differs from the new password.
var ErrPasswordMismatch = errors.New("passwords do not match")

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// ReadPassword returns the password from COMPVAULT_PASSWORD, or prompts for it. On a
// terminal the input is not echoed; otherwise the first line of the reader is used.
func ReadPassword(io IOTuple, prompt string) (string, error) {
	if password := os.Getenv(PasswordEnvVar); password != "" {
		return password, nil
	}
	return promptPassword(io, prompt)
}

// ReadNewPassword returns the password from COMPVAULT_NEW_PASSWORD, or prompts for it
// twice and requires both entries to match.
func ReadNewPassword(io IOTuple, prompt string) (string, error) {
	if password := os.Getenv(NewPasswordEnvVar); password != "" {
		return password, nil
	}

	password, err := promptPassword(io, prompt)
	if err != nil {
		return "", err
	}
	confirmation, err := promptPassword(io, "Confirm "+strings.ToLower(prompt))
	if err != nil {
		return "", err
	}
	if password != confirmation {
		return "", ErrPasswordMismatch
	}
	return password, nil
}

func promptPassword(io IOTuple, prompt string) (string, error) {
	_, _ = fmt.Fprint(io.Writer, prompt)

	if f, ok := io.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(io.Writer)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	line, err := readLine(io.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

// readLine reads up to the next newline one byte at a time, so consecutive prompts on
// the same piped reader do not lose buffered input.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err == io.EOF && len(line) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(string(line), "\r"), nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}
