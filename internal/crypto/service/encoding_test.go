package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

func TestBase64Encode(t *testing.T) {
	assert.Equal(t, "c2FsYXJ5OjE1MDAwMA==", Base64Encode([]byte("salary:150000")))
	assert.Equal(t, "", Base64Encode(nil))
}

func TestSanitizeBase64(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already valid", input: "YWJj", want: "YWJj"},
		{name: "strips whitespace", input: " YW\nJj\t", want: "YWJj"},
		{name: "restores double padding", input: "YQ", want: "YQ=="},
		{name: "restores single padding", input: "YWI", want: "YWI="},
		{name: "leaves impossible length alone", input: "YWJjZ", want: "YWJjZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeBase64(tt.input))
		})
	}
}

func TestBase64Decode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data := []byte{0x00, 0xff, 0x10, 0x80, 0x7f}
		decoded, err := Base64Decode(Base64Encode(data))
		require.NoError(t, err)
		assert.Equal(t, data, decoded)
	})

	t.Run("tolerates pasted whitespace and missing padding", func(t *testing.T) {
		decoded, err := Base64Decode("c2Fs YXJ5\nOjE1MDAwMA")
		require.NoError(t, err)
		assert.Equal(t, []byte("salary:150000"), decoded)
	})

	invalid := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "impossible length", input: "YWJjZ"},
		{name: "url-safe alphabet", input: "YW-_"},
		{name: "padding in the middle", input: "YQ==YQ=="},
		{name: "non-canonical trailing bits", input: "YR=="},
		{name: "too much padding", input: "Y==="},
	}

	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := Base64Decode(tt.input)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidEncoding)
		})
	}
}
