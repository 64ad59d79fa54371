package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/compvault/internal/errors"
)

func validEnvelope() EncryptedEnvelope {
	return EncryptedEnvelope{
		EncryptedData: "c2FsYXJ5OjE1MDAwMA==",
		IV:            "AAAAAAAAAAAAAAAA",
		Salt:          "AAAAAAAAAAAAAAAAAAAAAA==",
		Algorithm:     AESGCM,
		KeyDerivation: Argon2id,
	}
}

func TestEncryptedEnvelope_JSONShape(t *testing.T) {
	env := validEnvelope()

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Equal(t, map[string]string{
		"encryptedData": env.EncryptedData,
		"iv":            env.IV,
		"salt":          env.Salt,
		"algorithm":     "AES-GCM",
		"keyDerivation": "Argon2id",
	}, fields)
}

func TestEncryptedEnvelope_Validate(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		env := validEnvelope()
		assert.NoError(t, env.Validate())
	})

	t.Run("nil envelope", func(t *testing.T) {
		var env *EncryptedEnvelope
		err := env.Validate()
		assert.ErrorIs(t, err, ErrMissingEnvelopeField)
	})

	missing := map[string]func(e *EncryptedEnvelope){
		"encryptedData": func(e *EncryptedEnvelope) { e.EncryptedData = "" },
		"iv":            func(e *EncryptedEnvelope) { e.IV = "" },
		"salt":          func(e *EncryptedEnvelope) { e.Salt = "" },
		"algorithm":     func(e *EncryptedEnvelope) { e.Algorithm = "" },
		"keyDerivation": func(e *EncryptedEnvelope) { e.KeyDerivation = "" },
	}
	for field, mutate := range missing {
		t.Run("missing "+field, func(t *testing.T) {
			env := validEnvelope()
			mutate(&env)

			err := env.Validate()
			assert.ErrorIs(t, err, ErrMissingEnvelopeField)
			assert.ErrorIs(t, err, ErrInvalidEnvelope)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
			assert.Contains(t, err.Error(), field)
		})
	}

	t.Run("unsupported cipher", func(t *testing.T) {
		env := validEnvelope()
		env.Algorithm = "aes-gcm"

		err := env.Validate()
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
		assert.NotErrorIs(t, err, ErrMissingEnvelopeField)
	})

	t.Run("unsupported key derivation", func(t *testing.T) {
		env := validEnvelope()
		env.KeyDerivation = "PBKDF2"

		assert.ErrorIs(t, env.Validate(), ErrUnsupportedAlgorithm)
	})
}
