package service

import (
	"context"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// PBKDF2BaseIterations is the PBKDF2-HMAC-SHA256 iteration count used for the default
// Argon2id parameters (OWASP 2023 recommendation).
const PBKDF2BaseIterations = 600_000

// FallbackIterations scales the PBKDF2 iteration count with the requested Argon2id cost.
//
// iterations = base * ceil(memory / 64 MiB) * timeCost / 3, never below base.
//
// Envelopes do not record which derivation path produced their key, so this formula
// is part of the stored format. Changing it makes fallback-encrypted envelopes
// undecryptable.
func FallbackIterations(params cryptoDomain.KDFParams) int {
	memoryFactor := uint64(params.MemoryKiB+cryptoDomain.DefaultMemoryKiB-1) / uint64(cryptoDomain.DefaultMemoryKiB)
	if memoryFactor < 1 {
		memoryFactor = 1
	}

	iterations := uint64(PBKDF2BaseIterations) * memoryFactor * uint64(params.Iterations) /
		uint64(cryptoDomain.DefaultIterations)
	if iterations < PBKDF2BaseIterations {
		iterations = PBKDF2BaseIterations
	}
	return int(iterations)
}

// PBKDF2Deriver derives keys with PBKDF2-HMAC-SHA256.
//
// It is the fallback used when Argon2id cannot run. It is not memory-hard; the raised
// iteration count only partially compensates. Keys have the same length as Argon2id
// keys and are used the same way.
type PBKDF2Deriver struct {
	baseIterations int
}

// NewPBKDF2Deriver creates the fallback key deriver.
func NewPBKDF2Deriver() *PBKDF2Deriver {
	return &PBKDF2Deriver{baseIterations: PBKDF2BaseIterations}
}

// Name returns "pbkdf2-sha256".
func (d *PBKDF2Deriver) Name() string {
	return "pbkdf2-sha256"
}

// DeriveKey validates the inputs and runs PBKDF2 with the scaled iteration count.
func (d *PBKDF2Deriver) DeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	if err := validateDerivationInput(password, salt, params); err != nil {
		return nil, err
	}

	iterations := d.iterations(params)
	return runDerivation(ctx, password, salt, func(pw, s []byte) []byte {
		return pbkdf2.Key(pw, s, iterations, int(params.HashLength), sha256.New)
	})
}

func (d *PBKDF2Deriver) iterations(params cryptoDomain.KDFParams) int {
	scaled := FallbackIterations(params)
	if d.baseIterations == PBKDF2BaseIterations {
		return scaled
	}
	// Test-only reduced cost keeps the same proportions.
	return int(uint64(scaled) * uint64(d.baseIterations) / PBKDF2BaseIterations)
}
