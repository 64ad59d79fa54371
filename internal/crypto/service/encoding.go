package service

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// base64Pattern accepts the standard alphabet with at most two trailing pad characters.
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// Base64Encode encodes data with the standard padded alphabet.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// SanitizeBase64 strips incidental whitespace and restores missing padding.
//
// Only artifacts of copy and paste are repaired. A string whose unpadded length leaves
// a remainder of one can never be valid base64 and is returned unchanged so that
// validation rejects it.
func SanitizeBase64(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	switch len(cleaned) % 4 {
	case 2:
		cleaned += "=="
	case 3:
		cleaned += "="
	}
	return cleaned
}

// Base64Decode sanitizes and strictly decodes s.
//
// The character set and the length-multiple-of-4 rule are checked before decoding, and
// non-canonical trailing bits are rejected. All failures return ErrInvalidEncoding.
func Base64Decode(s string) ([]byte, error) {
	sanitized := SanitizeBase64(s)

	if sanitized == "" {
		return nil, fmt.Errorf("%w: empty input", cryptoDomain.ErrInvalidEncoding)
	}
	if len(sanitized)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", cryptoDomain.ErrInvalidEncoding, len(sanitized))
	}
	if !base64Pattern.MatchString(sanitized) {
		return nil, fmt.Errorf("%w: invalid characters", cryptoDomain.ErrInvalidEncoding)
	}

	decoded, err := base64.StdEncoding.Strict().DecodeString(sanitized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidEncoding, err)
	}
	return decoded, nil
}
