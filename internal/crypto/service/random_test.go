package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

func TestGenerateSalt(t *testing.T) {
	t.Run("zero selects the default length", func(t *testing.T) {
		salt, err := GenerateSalt(0)
		require.NoError(t, err)
		assert.Len(t, salt, cryptoDomain.SaltSize)
	})

	t.Run("minimum length", func(t *testing.T) {
		salt, err := GenerateSalt(cryptoDomain.MinSaltSize)
		require.NoError(t, err)
		assert.Len(t, salt, cryptoDomain.MinSaltSize)
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := GenerateSalt(8)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidSalt)
	})

	t.Run("successive salts differ", func(t *testing.T) {
		a, err := GenerateSalt(0)
		require.NoError(t, err)
		b, err := GenerateSalt(0)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestGenerateIV(t *testing.T) {
	t.Run("zero selects the default length", func(t *testing.T) {
		iv, err := GenerateIV(0)
		require.NoError(t, err)
		assert.Len(t, iv, cryptoDomain.IVSize)
	})

	t.Run("explicit default length", func(t *testing.T) {
		iv, err := GenerateIV(cryptoDomain.IVSize)
		require.NoError(t, err)
		assert.Len(t, iv, cryptoDomain.IVSize)
	})

	t.Run("other lengths are rejected", func(t *testing.T) {
		_, err := GenerateIV(16)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidIV)
	})
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare([]byte("abc"), []byte("abc")))
	assert.False(t, SecureCompare([]byte("abc"), []byte("abd")))
	assert.False(t, SecureCompare([]byte("abc"), []byte("abcd")))
	assert.True(t, SecureCompare(nil, []byte{}))
}
