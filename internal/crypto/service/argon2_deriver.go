package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// Argon2idDeriver derives keys with the memory-hard Argon2id function.
//
// The memory cost makes large-scale offline guessing on GPUs and ASICs expensive. With
// the default parameters one derivation allocates 64 MiB and takes in the order of a
// hundred milliseconds, which is why derived keys are cached.
type Argon2idDeriver struct{}

// NewArgon2idDeriver creates the primary key deriver.
func NewArgon2idDeriver() *Argon2idDeriver {
	return &Argon2idDeriver{}
}

// Name returns "argon2id".
func (d *Argon2idDeriver) Name() string {
	return "argon2id"
}

// DeriveKey validates the inputs and runs Argon2id with the given parameters.
func (d *Argon2idDeriver) DeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	if err := validateDerivationInput(password, salt, params); err != nil {
		return nil, err
	}

	return runDerivation(ctx, password, salt, func(pw, s []byte) []byte {
		return argon2.IDKey(pw, s, params.Iterations, params.MemoryKiB, params.Parallelism, params.HashLength)
	})
}

// SelfTest runs a tiny real derivation twice and checks the output is well formed and
// deterministic. It deliberately bypasses the parameter floor to stay cheap.
func (d *Argon2idDeriver) SelfTest() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errDerivationPanic, r)
		}
	}()

	password := []byte("compvault-self-test")
	salt := bytes.Repeat([]byte{0x5a}, cryptoDomain.MinSaltSize)

	first := argon2.IDKey(password, salt, 1, 8, 1, cryptoDomain.KeySize)
	second := argon2.IDKey(password, salt, 1, 8, 1, cryptoDomain.KeySize)

	switch {
	case len(first) != cryptoDomain.KeySize:
		return fmt.Errorf("argon2id self-test: unexpected key length %d", len(first))
	case !SecureCompare(first, second):
		return errors.New("argon2id self-test: output is not deterministic")
	case SecureCompare(first, make([]byte, cryptoDomain.KeySize)):
		return errors.New("argon2id self-test: output is all zeros")
	}
	return nil
}
