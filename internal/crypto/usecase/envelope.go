package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
	"github.com/allisson/compvault/internal/errors"
)

// decodeEnvelope validates structure and base64 well-formedness before any
// cryptography runs. A non-nil result means the envelope was rejected.
func decodeEnvelope(
	envelope *cryptoDomain.EncryptedEnvelope,
) (*cryptoDomain.DecodedEnvelope, *cryptoDomain.DecryptionResult) {
	fail := func(reason cryptoDomain.FailureReason, message string) *cryptoDomain.DecryptionResult {
		r := cryptoDomain.FailedWith(reason, message).At(cryptoDomain.StateValidating)
		return &r
	}

	if err := envelope.Validate(); err != nil {
		switch {
		case errors.Is(err, cryptoDomain.ErrMissingEnvelopeField):
			return nil, fail(cryptoDomain.ReasonMissingField, "envelope is missing a required field")
		case errors.Is(err, cryptoDomain.ErrUnsupportedAlgorithm):
			return nil, fail(cryptoDomain.ReasonUnsupportedAlgorithm, "envelope uses an unsupported algorithm")
		default:
			return nil, fail(cryptoDomain.ReasonInvalidEnvelope, "envelope is invalid")
		}
	}

	ciphertext, err := cryptoService.Base64Decode(envelope.EncryptedData)
	if err != nil {
		return nil, fail(cryptoDomain.ReasonInvalidEncoding, "encryptedData is not valid base64")
	}
	iv, err := cryptoService.Base64Decode(envelope.IV)
	if err != nil {
		return nil, fail(cryptoDomain.ReasonInvalidEncoding, "iv is not valid base64")
	}
	salt, err := cryptoService.Base64Decode(envelope.Salt)
	if err != nil {
		return nil, fail(cryptoDomain.ReasonInvalidEncoding, "salt is not valid base64")
	}

	if len(iv) != cryptoDomain.IVSize {
		return nil, fail(cryptoDomain.ReasonInvalidEncoding, "iv must decode to 12 bytes")
	}
	if len(salt) < cryptoDomain.MinSaltSize {
		return nil, fail(cryptoDomain.ReasonInvalidEncoding, "salt must decode to at least 16 bytes")
	}
	if len(ciphertext) < cryptoDomain.TagSize {
		return nil, fail(cryptoDomain.ReasonInvalidEnvelope, "encryptedData is too short")
	}

	return &cryptoDomain.DecodedEnvelope{Ciphertext: ciphertext, IV: iv, Salt: salt}, nil
}

// emptyPasswordFailure rejects a call before any key is derived.
func emptyPasswordFailure() cryptoDomain.DecryptionResult {
	return cryptoDomain.FailedWith(cryptoDomain.ReasonInvalidPassword, "password cannot be empty").
		At(cryptoDomain.StateValidating)
}

// derivationFailure maps a key-cache error to a result. Parameter errors are caller
// mistakes and keep their message; everything else is reported generically.
func derivationFailure(err error) cryptoDomain.DecryptionResult {
	var result cryptoDomain.DecryptionResult
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = cryptoDomain.FailedWith(cryptoDomain.ReasonKeyDerivationFailed, "key derivation was cancelled")
	case errors.Is(err, cryptoDomain.ErrWeakParameters), errors.Is(err, cryptoDomain.ErrInvalidParameters):
		result = cryptoDomain.FailedWith(cryptoDomain.ReasonKeyDerivationFailed, err.Error())
	default:
		result = cryptoDomain.FailedWith(cryptoDomain.ReasonKeyDerivationFailed, "key derivation failed")
	}
	return result.At(cryptoDomain.StateDerivingKey)
}

// resultError turns a failed result back into the matching sentinel error.
func resultError(result cryptoDomain.DecryptionResult) error {
	switch result.Reason {
	case cryptoDomain.ReasonMissingField:
		return cryptoDomain.ErrMissingEnvelopeField
	case cryptoDomain.ReasonInvalidEncoding:
		return cryptoDomain.ErrInvalidEncoding
	case cryptoDomain.ReasonUnsupportedAlgorithm:
		return cryptoDomain.ErrUnsupportedAlgorithm
	case cryptoDomain.ReasonInvalidEnvelope:
		return cryptoDomain.ErrInvalidEnvelope
	case cryptoDomain.ReasonInvalidPassword:
		return cryptoDomain.ErrInvalidPassword
	case cryptoDomain.ReasonKeyDerivationFailed:
		return errors.Wrap(cryptoDomain.ErrKeyDerivationFailed, result.Error)
	default:
		return cryptoDomain.ErrDecryptionFailed
	}
}

// isCorruption reports whether a failure reason points at the stored data rather than
// at the password or the runtime.
func isCorruption(reason cryptoDomain.FailureReason) bool {
	switch reason {
	case cryptoDomain.ReasonMissingField,
		cryptoDomain.ReasonInvalidEncoding,
		cryptoDomain.ReasonUnsupportedAlgorithm,
		cryptoDomain.ReasonInvalidEnvelope,
		cryptoDomain.ReasonDecryptionFailed:
		return true
	default:
		return false
	}
}
