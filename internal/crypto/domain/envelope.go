package domain

import (
	"fmt"

	validation "github.com/jellydator/validation"
)

// EncryptedEnvelope is the only persisted or transmitted shape of sensitive data.
//
// The JSON field names are part of the stored format and must remain stable for
// backward-compatible decryption:
//
//	{
//	  "encryptedData": "<base64 ciphertext with GCM tag>",
//	  "iv": "<base64, 12 bytes>",
//	  "salt": "<base64, >= 16 bytes>",
//	  "algorithm": "AES-GCM",
//	  "keyDerivation": "Argon2id"
//	}
//
// The envelope is self-describing: given the password, nothing else is required to
// decrypt it. Salt and IV are public.
type EncryptedEnvelope struct {
	EncryptedData string       `json:"encryptedData"`
	IV            string       `json:"iv"`
	Salt          string       `json:"salt"`
	Algorithm     Algorithm    `json:"algorithm"`
	KeyDerivation KDFAlgorithm `json:"keyDerivation"`
}

// Validate checks the envelope structure without touching any cryptography.
//
// Empty fields return ErrMissingEnvelopeField and unknown algorithm tags return
// ErrUnsupportedAlgorithm. Base64 well-formedness is checked when the envelope is
// decoded.
func (e *EncryptedEnvelope) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: envelope is nil", ErrMissingEnvelopeField)
	}

	err := validation.ValidateStruct(e,
		validation.Field(&e.EncryptedData, validation.Required),
		validation.Field(&e.IV, validation.Required),
		validation.Field(&e.Salt, validation.Required),
		validation.Field(&e.Algorithm, validation.Required),
		validation.Field(&e.KeyDerivation, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingEnvelopeField, err)
	}

	if e.Algorithm != AESGCM {
		return fmt.Errorf("%w: cipher %q", ErrUnsupportedAlgorithm, e.Algorithm)
	}
	if e.KeyDerivation != Argon2id {
		return fmt.Errorf("%w: key derivation %q", ErrUnsupportedAlgorithm, e.KeyDerivation)
	}

	return nil
}

// DecodedEnvelope holds the raw bytes of a structurally valid envelope.
type DecodedEnvelope struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
}
