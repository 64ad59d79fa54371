// Package service provides the client-side cryptographic primitives: AES-256-GCM
// authenticated encryption, secure random generation, strict base64 handling and
// password-based key derivation with an Argon2id primary and a PBKDF2 fallback.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD under a freshly generated IV.
	Encrypt(plaintext, aad []byte) (ciphertext, iv []byte, err error)

	// EncryptWithIV encrypts plaintext under a caller-supplied IV.
	EncryptWithIV(plaintext, iv, aad []byte) ([]byte, error)

	// Decrypt decrypts ciphertext using the provided IV and AAD.
	Decrypt(ciphertext, iv, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm tag.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver turns a password and salt into a fixed-length symmetric key.
//
// Implementations must be deterministic: the same password, salt and parameters always
// yield the same key. Returned keys are owned by the caller, who should zero them
// after use.
type KeyDeriver interface {
	// Name identifies the derivation path for logs and metrics. It is never persisted.
	Name() string

	// DeriveKey derives a key of params.HashLength bytes.
	DeriveKey(ctx context.Context, password, salt []byte, params cryptoDomain.KDFParams) ([]byte, error)
}

// selfTester is implemented by derivers that can verify themselves cheaply at startup.
type selfTester interface {
	SelfTest() error
}
