package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM
// (Advanced Encryption Standard with Galois/Counter Mode).
//
// Security properties:
//   - 256-bit key derived from the user's password
//   - 12-byte IV, freshly random for every Encrypt call
//   - 16-byte authentication tag appended to the ciphertext
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from multiple
//	goroutines. Each encryption operation generates a unique IV independently.
//
// Example usage:
//
//	cipher, err := NewAESGCM(key)
//	if err != nil {
//	    return err
//	}
//	ciphertext, iv, err := cipher.Encrypt([]byte("salary:150000"), nil)
//	plaintext, err := cipher.Decrypt(ciphertext, iv, nil)
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits). Any other size returns
// ErrInvalidKeySize.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create AES cipher: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM mode: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with a freshly generated IV.
//
// The IV is produced internally from crypto/rand on every call, so the same key never
// sees the same IV twice by construction. The returned ciphertext has the
// authentication tag appended. AAD may be nil.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, iv []byte, err error) {
	iv, err = GenerateIV(a.aead.NonceSize())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	ciphertext, err = a.EncryptWithIV(plaintext, iv, aad)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, iv, nil
}

// EncryptWithIV encrypts plaintext with a caller-supplied IV.
//
// Reusing an IV under the same key destroys GCM confidentiality. This path exists for
// known-answer tests; record encryption always goes through Encrypt.
func (a *AESGCMCipher) EncryptWithIV(plaintext, iv, aad []byte) (ciphertext []byte, err error) {
	if len(iv) != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidIV
	}

	defer func() {
		if r := recover(); r != nil {
			ciphertext = nil
			err = fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, r)
		}
	}()

	return a.aead.Seal(nil, iv, plaintext, aad), nil
}

// Decrypt verifies the authentication tag and returns the plaintext.
//
// Any verification failure (wrong key, wrong IV, wrong AAD or modified ciphertext)
// returns ErrDecryptionFailed without further detail.
func (a *AESGCMCipher) Decrypt(ciphertext, iv, aad []byte) ([]byte, error) {
	if len(iv) != a.aead.NonceSize() || len(ciphertext) < a.aead.Overhead() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := a.aead.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
