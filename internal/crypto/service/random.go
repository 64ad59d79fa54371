package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// GenerateSalt returns length cryptographically secure random bytes for key derivation.
// A length of zero selects the default (32). Lengths below 16 return ErrInvalidSalt.
func GenerateSalt(length int) ([]byte, error) {
	if length == 0 {
		length = cryptoDomain.SaltSize
	}
	if length < cryptoDomain.MinSaltSize {
		return nil, cryptoDomain.ErrInvalidSalt
	}
	return randomBytes(length)
}

// GenerateIV returns length cryptographically secure random bytes for a cipher nonce.
// A length of zero selects the AES-GCM default (12).
func GenerateIV(length int) ([]byte, error) {
	if length == 0 {
		length = cryptoDomain.IVSize
	}
	if length != cryptoDomain.IVSize {
		return nil, cryptoDomain.ErrInvalidIV
	}
	return randomBytes(length)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
