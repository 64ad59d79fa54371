package session

import (
	"github.com/allisson/compvault/internal/errors"
)

// Session error definitions.
var (
	// ErrLocked indicates no password is held, either because the session was never
	// unlocked or because it was locked or expired.
	ErrLocked = errors.Wrap(errors.ErrLocked, "session is locked")

	// ErrInvalidCredentials indicates the password does not match the verifier.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid password")

	// ErrTooManyAttempts indicates the unlock attempt budget is exhausted.
	ErrTooManyAttempts = errors.Wrap(errors.ErrTooManyRequests, "too many unlock attempts")
)
