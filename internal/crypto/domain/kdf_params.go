package domain

import (
	"encoding/binary"
	"fmt"
)

const (
	// DefaultMemoryKiB is the default Argon2id memory cost (64 MiB).
	DefaultMemoryKiB uint32 = 64 * 1024

	// DefaultIterations is the default Argon2id time cost.
	DefaultIterations uint32 = 3

	// DefaultParallelism is the default Argon2id lane count.
	DefaultParallelism uint8 = 1

	// MinMemoryKiB is the memory floor (32 MiB); anything below is ErrWeakParameters.
	MinMemoryKiB uint32 = 32 * 1024

	// MinIterations is the time-cost floor; anything below is ErrWeakParameters.
	MinIterations uint32 = 2

	// MaxParallelism is the highest accepted lane count.
	MaxParallelism uint8 = 4
)

// KDFParams holds the tunable cost parameters for password-based key derivation.
//
// The same parameter set must be used to decrypt an envelope that was used to encrypt
// it; envelopes do not record parameters, so non-default values are the caller's
// responsibility.
type KDFParams struct {
	MemoryKiB   uint32 `json:"memory_kib"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
	HashLength  uint32 `json:"hash_length"`
}

// DefaultKDFParams returns the default parameter set (64 MiB, 3 iterations, 1 lane, 32-byte key).
func DefaultKDFParams() KDFParams {
	return KDFParams{
		MemoryKiB:   DefaultMemoryKiB,
		Iterations:  DefaultIterations,
		Parallelism: DefaultParallelism,
		HashLength:  KeySize,
	}
}

// Validate rejects parameter sets below the security floor or of the wrong shape.
//
// Memory below 32 MiB and fewer than 2 iterations return ErrWeakParameters.
// Parallelism outside [1,4] and a hash length other than KeySize return
// ErrInvalidParameters.
func (p KDFParams) Validate() error {
	if p.MemoryKiB < MinMemoryKiB {
		return fmt.Errorf("%w: memory %d KiB is below %d KiB", ErrWeakParameters, p.MemoryKiB, MinMemoryKiB)
	}
	if p.Iterations < MinIterations {
		return fmt.Errorf("%w: iterations %d is below %d", ErrWeakParameters, p.Iterations, MinIterations)
	}
	if p.Parallelism < 1 || p.Parallelism > MaxParallelism {
		return fmt.Errorf(
			"%w: parallelism %d is outside [1,%d]",
			ErrInvalidParameters,
			p.Parallelism,
			MaxParallelism,
		)
	}
	if p.HashLength != KeySize {
		return fmt.Errorf("%w: hash length must be %d, got %d", ErrInvalidParameters, KeySize, p.HashLength)
	}
	return nil
}

// MarshalBinary encodes the parameters in a fixed 13-byte layout used for cache fingerprints.
func (p KDFParams) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 13)
	binary.BigEndian.PutUint32(buf[0:4], p.MemoryKiB)
	binary.BigEndian.PutUint32(buf[4:8], p.Iterations)
	buf[8] = p.Parallelism
	binary.BigEndian.PutUint32(buf[9:13], p.HashLength)
	return buf, nil
}

// OrDefault returns the parameters pointed to by p, or DefaultKDFParams when p is nil.
func OrDefault(p *KDFParams) KDFParams {
	if p == nil {
		return DefaultKDFParams()
	}
	return *p
}
