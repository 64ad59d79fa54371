// Package domain defines the cryptographic domain models for client-side record encryption.
//
// The persisted shape is the EncryptedEnvelope: ciphertext, IV and salt encoded as base64
// plus two fixed algorithm tags. Everything else in this package (KDF parameters, cached
// keys, decryption results, audit reports) is process-local and never persisted.
package domain

// Algorithm identifies the symmetric cipher recorded in an envelope.
//
// Only one cipher is supported. The tag is part of the persisted wire format and must
// never change, otherwise previously stored envelopes stop decrypting.
type Algorithm string

// KDFAlgorithm identifies the key-derivation function recorded in an envelope.
type KDFAlgorithm string

const (
	// AESGCM is the AES-256-GCM authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag appended to the ciphertext
	AESGCM Algorithm = "AES-GCM"

	// Argon2id is the key-derivation tag written into every envelope.
	//
	// The tag is written even when the PBKDF2 fallback produced the key; the envelope
	// does not record which derivation path was used.
	Argon2id KDFAlgorithm = "Argon2id"
)

const (
	// KeySize is the derived symmetric key size in bytes (AES-256).
	KeySize = 32

	// IVSize is the AES-GCM nonce size in bytes.
	IVSize = 12

	// TagSize is the AES-GCM authentication tag size in bytes.
	TagSize = 16

	// SaltSize is the default salt size generated for each encryption.
	SaltSize = 32

	// MinSaltSize is the smallest salt accepted for key derivation.
	MinSaltSize = 16

	// MinPasswordLength is the minimum password length accepted for encryption.
	MinPasswordLength = 8
)
