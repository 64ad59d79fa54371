package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// errDerivationPanic marks a derivation that panicked, e.g. when the memory cost could
// not be allocated.
var errDerivationPanic = errors.New("key derivation panicked")

// validateDerivationInput applies the checks shared by every KeyDeriver.
func validateDerivationInput(password, salt []byte, params cryptoDomain.KDFParams) error {
	if len(password) == 0 {
		return cryptoDomain.ErrInvalidPassword
	}
	if len(salt) < cryptoDomain.MinSaltSize {
		return cryptoDomain.ErrInvalidSalt
	}
	return params.Validate()
}

// runDerivation executes derive on its own goroutine so the caller can stop waiting
// when ctx is done.
//
// Derivation primitives cannot be interrupted. On cancellation the running derivation
// finishes in the background and its key is zeroed and dropped. Panics inside derive
// are converted into errors.
func runDerivation(
	ctx context.Context,
	password, salt []byte,
	derive func(password, salt []byte) []byte,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The caller may zero its buffers as soon as we return on cancellation.
	pw := bytes.Clone(password)
	s := bytes.Clone(salt)

	type result struct {
		key []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res = result{err: fmt.Errorf("%w: %v", errDerivationPanic, r)}
			}
			cryptoDomain.ZeroAll(pw, s)
			done <- res
		}()
		res.key = derive(pw, s)
	}()

	select {
	case res := <-done:
		return res.key, res.err
	case <-ctx.Done():
		go func() {
			res := <-done
			cryptoDomain.Zero(res.key)
		}()
		return nil, ctx.Err()
	}
}
