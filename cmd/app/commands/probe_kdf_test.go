package commands

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

type fakeDeriver struct {
	err error
}

func (f fakeDeriver) Name() string { return "fake" }

func (f fakeDeriver) DeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	sum := sha256.Sum256(append(append([]byte{}, password...), salt...))
	return sum[:], nil
}

func TestRunProbeKDF(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()

	t.Run("available", func(t *testing.T) {
		var out bytes.Buffer
		err := RunProbeKDF(ctx, fakeDeriver{}, params, &out, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "fake available")
		assert.Contains(t, out.String(), "PBKDF2 fallback would use 600000 iterations")
	})

	t.Run("unavailable-json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunProbeKDF(ctx, fakeDeriver{err: errors.New("out of memory")}, params, &out, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"primary_available": false`)
		assert.Contains(t, out.String(), "out of memory")
	})
}
