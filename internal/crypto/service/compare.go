package service

import "crypto/subtle"

// SecureCompare reports whether a and b are equal in time independent of their contents.
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
