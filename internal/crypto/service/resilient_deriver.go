package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	apperrors "github.com/allisson/compvault/internal/errors"
)

// ResilientDeriver runs the primary deriver and switches to the fallback for the rest
// of the process lifetime once the primary fails.
//
// Input and parameter errors are returned as-is and never trigger the switch.
// ErrKeyDerivationFailed is returned only when both derivers fail.
type ResilientDeriver struct {
	primary  KeyDeriver
	fallback KeyDeriver
	degraded atomic.Bool
	logger   *slog.Logger
}

// NewResilientDeriver wraps primary and fallback. A nil logger discards log output.
func NewResilientDeriver(primary, fallback KeyDeriver, logger *slog.Logger) *ResilientDeriver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ResilientDeriver{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Name returns the name of the deriver currently in use.
func (d *ResilientDeriver) Name() string {
	if d.degraded.Load() {
		return d.fallback.Name()
	}
	return d.primary.Name()
}

// Degraded reports whether the fallback is in use.
func (d *ResilientDeriver) Degraded() bool {
	return d.degraded.Load()
}

// Degrade switches to the fallback permanently.
func (d *ResilientDeriver) Degrade(reason string) {
	if d.degraded.CompareAndSwap(false, true) {
		d.logger.Warn("key derivation degraded to fallback",
			slog.String("primary", d.primary.Name()),
			slog.String("fallback", d.fallback.Name()),
			slog.String("reason", reason),
		)
	}
}

// DeriveKey derives a key through the active deriver.
func (d *ResilientDeriver) DeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	if err := validateDerivationInput(password, salt, params); err != nil {
		return nil, err
	}

	if !d.degraded.Load() {
		key, err := d.primary.DeriveKey(ctx, password, salt, params)
		if err == nil {
			return key, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return nil, err
		}
		d.Degrade(err.Error())
	}

	key, err := d.fallback.DeriveKey(ctx, password, salt, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyDerivationFailed, err)
	}
	return key, nil
}
