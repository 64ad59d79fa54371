package domain

import (
	"github.com/allisson/compvault/internal/errors"
)

// Record error definitions.
var (
	// ErrRecordNotFound indicates the record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrUserIDRequired indicates an empty owner identifier.
	ErrUserIDRequired = errors.Wrap(errors.ErrInvalidInput, "user id is required")

	// ErrRecordsChanged indicates records were added, removed or rewritten while a
	// password change was re-encrypting them. The change can be retried.
	ErrRecordsChanged = errors.Wrap(errors.ErrConflict, "records changed during password change")
)
