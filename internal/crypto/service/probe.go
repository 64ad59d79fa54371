package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// ProbeKeyDeriver checks that d works in this environment.
//
// Derivers implementing SelfTest are checked with it. Anything else derives a key with
// the default parameters twice and must return matching KeySize keys.
func ProbeKeyDeriver(ctx context.Context, d KeyDeriver) error {
	if st, ok := d.(selfTester); ok {
		return st.SelfTest()
	}

	password := []byte("compvault-probe")
	salt := bytes.Repeat([]byte{0xa5}, cryptoDomain.MinSaltSize)
	params := cryptoDomain.DefaultKDFParams()

	first, err := d.DeriveKey(ctx, password, salt, params)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(first)

	second, err := d.DeriveKey(ctx, password, salt, params)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(second)

	if len(first) != cryptoDomain.KeySize {
		return fmt.Errorf("probe %s: unexpected key length %d", d.Name(), len(first))
	}
	if !SecureCompare(first, second) {
		return errors.New("probe " + d.Name() + ": output is not deterministic")
	}
	return nil
}

// SelectKeyDeriver probes primary once and returns a ResilientDeriver that starts on
// the primary when it passed, or on the fallback when it failed or forceFallback is set.
func SelectKeyDeriver(
	ctx context.Context,
	primary, fallback KeyDeriver,
	forceFallback bool,
	logger *slog.Logger,
) *ResilientDeriver {
	d := NewResilientDeriver(primary, fallback, logger)

	if forceFallback {
		d.Degrade("fallback forced by configuration")
		return d
	}
	if err := ProbeKeyDeriver(ctx, primary); err != nil {
		d.Degrade(err.Error())
		return d
	}

	d.logger.Debug("key derivation capability probe passed", slog.String("deriver", primary.Name()))
	return d
}
