package domain

import (
	"github.com/allisson/compvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// Input and policy errors wrap errors.ErrInvalidInput so the HTTP layer maps them to
// 422 Unprocessable Entity. Primitive failures (key derivation, encryption) are not
// caller mistakes and map to 500.
var (
	// ErrEmptyData indicates there is no plaintext to encrypt.
	ErrEmptyData = errors.Wrap(errors.ErrInvalidInput, "data cannot be empty")

	// ErrInvalidPassword indicates an empty password was supplied to key derivation.
	ErrInvalidPassword = errors.Wrap(errors.ErrInvalidInput, "password cannot be empty")

	// ErrWeakPassword indicates the password is shorter than MinPasswordLength.
	ErrWeakPassword = errors.Wrap(errors.ErrInvalidInput, "password must be at least 8 characters")

	// ErrInvalidSalt indicates the salt is shorter than MinSaltSize.
	ErrInvalidSalt = errors.Wrap(errors.ErrInvalidInput, "salt must be at least 16 bytes")

	// ErrInvalidIV indicates the IV is not IVSize bytes long.
	ErrInvalidIV = errors.Wrap(errors.ErrInvalidInput, "iv must be exactly 12 bytes")

	// ErrInvalidKeySize indicates the symmetric key is not KeySize bytes long.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidEncoding indicates malformed base64 input.
	ErrInvalidEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid base64 encoding")

	// ErrWeakParameters indicates KDF parameters below the security floor.
	ErrWeakParameters = errors.Wrap(errors.ErrInvalidInput, "key derivation parameters below security floor")

	// ErrInvalidParameters indicates structurally invalid KDF parameters.
	ErrInvalidParameters = errors.Wrap(errors.ErrInvalidInput, "invalid key derivation parameters")

	// ErrInvalidEnvelope indicates the envelope failed structural validation.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrMissingEnvelopeField indicates a required envelope field is empty.
	ErrMissingEnvelopeField = errors.Wrap(ErrInvalidEnvelope, "missing field")

	// ErrUnsupportedAlgorithm indicates an algorithm tag this implementation does not recognize.
	ErrUnsupportedAlgorithm = errors.Wrap(ErrInvalidEnvelope, "unsupported algorithm")

	// ErrDecryptionFailed indicates the authentication tag did not verify.
	//
	// Wrong password, wrong IV and tampered ciphertext all produce this error. The
	// cause is never disclosed so the result cannot be used as an oracle.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "invalid password or corrupted data")

	// ErrKeyDerivationFailed indicates both the primary and fallback derivation failed.
	ErrKeyDerivationFailed = errors.New("key derivation failed")

	// ErrEncryptionFailed indicates the underlying cipher primitive returned an error.
	ErrEncryptionFailed = errors.New("encryption failed")
)
