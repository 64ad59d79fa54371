package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingDeriver derives sha256(password || salt) and counts calls.
type countingDeriver struct {
	calls   atomic.Int32
	delay   time.Duration
	failFor map[string]error
}

func (d *countingDeriver) Name() string { return "counting" }

func (d *countingDeriver) DeriveKey(
	ctx context.Context,
	password, salt []byte,
	_ cryptoDomain.KDFParams,
) ([]byte, error) {
	d.calls.Add(1)
	if err, ok := d.failFor[string(salt)]; ok {
		return nil, err
	}
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	sum := sha256.Sum256(append(append([]byte{}, password...), salt...))
	return sum[:], nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func salt(b byte) []byte {
	return bytes.Repeat([]byte{b}, cryptoDomain.SaltSize)
}

func newTestCache(d *countingDeriver, clock *fakeClock, cfg Config) *KeyCache {
	return New(d, cfg, WithClock(clock.Now))
}

func TestKeyCache_GetOrDeriveKey(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()

	t.Run("second lookup is a hit", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		k1, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)
		k2, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)

		assert.Equal(t, k1, k2)
		assert.Equal(t, int32(1), d.calls.Load())

		stats := c.Stats()
		assert.Equal(t, 1, stats.Size)
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, uint64(1), stats.Derivations)
	})

	t.Run("returned keys are copies", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		k1, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)
		expected := bytes.Clone(k1)
		cryptoDomain.Zero(k1)

		k2, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)
		assert.Equal(t, expected, k2)
	})

	t.Run("password, salt and params all partition the cache", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		other := params
		other.Iterations = 4

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)
		_, err = c.GetOrDeriveKey(ctx, []byte("wrongpass1"), salt(1), params)
		require.NoError(t, err)
		_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(2), params)
		require.NoError(t, err)
		_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), other)
		require.NoError(t, err)

		assert.Equal(t, int32(4), d.calls.Load())
		assert.Equal(t, 4, c.Stats().Size)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		boom := errors.New("derivation failed")
		d := &countingDeriver{failFor: map[string]error{string(salt(9)): boom}}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(9), params)
		assert.ErrorIs(t, err, boom)
		_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(9), params)
		assert.ErrorIs(t, err, boom)

		assert.Equal(t, int32(2), d.calls.Load())
		assert.Equal(t, 0, c.Stats().Size)
	})
}

func TestKeyCache_TTL(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()
	d := &countingDeriver{}
	clock := newFakeClock()
	c := newTestCache(d, clock, DefaultConfig())

	_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)
	assert.Equal(t, int32(1), d.calls.Load(), "hits do not extend the TTL but entry is still fresh")

	clock.Advance(time.Minute)
	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), d.calls.Load(), "entry expired at exactly 15 minutes")
}

func TestKeyCache_CapacityEviction(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()
	d := &countingDeriver{}
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.Capacity = 3
	c := newTestCache(d, clock, cfg)

	for i := byte(1); i <= 3; i++ {
		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(i), params)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	// A hit on the oldest entry does not protect it; eviction is by creation time.
	_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)

	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(4), params)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 3, stats.Size)
	assert.Equal(t, uint64(1), stats.Evictions)

	calls := d.calls.Load()
	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(2), params)
	require.NoError(t, err)
	assert.Equal(t, calls, d.calls.Load(), "salt 2 should still be cached")

	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)
	assert.Equal(t, calls+1, d.calls.Load(), "salt 1 should have been evicted")
}

func TestKeyCache_ConcurrentMissesShareOneDerivation(t *testing.T) {
	ctx := context.Background()
	d := &countingDeriver{delay: 50 * time.Millisecond}
	c := newTestCache(d, newFakeClock(), DefaultConfig())

	var wg sync.WaitGroup
	keys := make([][]byte, 10)
	for i := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), cryptoDomain.DefaultKDFParams())
			assert.NoError(t, err)
			keys[i] = key
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), d.calls.Load())
	for _, key := range keys[1:] {
		assert.Equal(t, keys[0], key)
	}
}

func TestKeyCache_Invalidation(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()

	t.Run("InvalidateAll keeps counters", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)

		c.InvalidateAll()

		stats := c.Stats()
		assert.Equal(t, 0, stats.Size)
		assert.Equal(t, uint64(1), stats.Misses)

		_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)
		assert.Equal(t, int32(2), d.calls.Load())
	})

	t.Run("ClearAll resets counters", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)

		c.ClearAll()
		assert.Equal(t, Stats{Capacity: 50}, c.Stats())
	})

	t.Run("in-flight derivation is not cached after invalidation", func(t *testing.T) {
		d := &countingDeriver{delay: 50 * time.Millisecond}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
			assert.NoError(t, err)
		}()

		time.Sleep(10 * time.Millisecond)
		c.InvalidateAll()
		<-done

		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("invalidated key bytes are zeroed", func(t *testing.T) {
		d := &countingDeriver{}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
		require.NoError(t, err)

		c.mu.Lock()
		var held []byte
		for _, entry := range c.entries {
			held = entry.Key
		}
		c.mu.Unlock()
		require.NotEmpty(t, held)

		c.InvalidateAll()
		assert.Equal(t, make([]byte, len(held)), held)
	})
}

func TestKeyCache_PrecomputeKeys(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()

	t.Run("warms every distinct salt", func(t *testing.T) {
		d := &countingDeriver{delay: 5 * time.Millisecond}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		salts := [][]byte{salt(1), salt(2), salt(1), salt(3), salt(2)}
		require.NoError(t, c.PrecomputeKeys(ctx, []byte("Tr0ub4dor&3"), salts, params))

		assert.Equal(t, int32(3), d.calls.Load())
		assert.Equal(t, 3, c.Stats().Size)

		_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(3), params)
		require.NoError(t, err)
		assert.Equal(t, int32(3), d.calls.Load())
	})

	t.Run("failures are joined and do not stop other salts", func(t *testing.T) {
		boom := errors.New("boom")
		d := &countingDeriver{failFor: map[string]error{string(salt(2)): boom}}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		err := c.PrecomputeKeys(ctx, []byte("Tr0ub4dor&3"), [][]byte{salt(1), salt(2), salt(3)}, params)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, c.Stats().Size)
	})

	t.Run("empty input", func(t *testing.T) {
		c := newTestCache(&countingDeriver{}, newFakeClock(), DefaultConfig())
		assert.NoError(t, c.PrecomputeKeys(ctx, []byte("Tr0ub4dor&3"), nil, params))
	})
}

func TestKeyCache_DeriveKeys(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()
	password := []byte("Tr0ub4dor&3")

	t.Run("keys outlive eviction from a small cache", func(t *testing.T) {
		d := &countingDeriver{}
		cfg := DefaultConfig()
		cfg.Capacity = 2
		c := newTestCache(d, newFakeClock(), cfg)

		salts := [][]byte{salt(1), salt(2), salt(3), salt(4), salt(1)}
		derived := c.DeriveKeys(ctx, password, salts, params)

		require.Len(t, derived, 4)
		for _, s := range [][]byte{salt(1), salt(2), salt(3), salt(4)} {
			entry, ok := derived[string(s)]
			require.True(t, ok)
			require.NoError(t, entry.Err)
			want := sha256.Sum256(append(append([]byte{}, password...), s...))
			assert.Equal(t, want[:], entry.Key)
		}
		assert.Equal(t, int32(4), d.calls.Load())
		assert.Equal(t, 2, c.Stats().Size)
	})

	t.Run("errors are kept per salt", func(t *testing.T) {
		boom := errors.New("boom")
		d := &countingDeriver{failFor: map[string]error{string(salt(2)): boom}}
		c := newTestCache(d, newFakeClock(), DefaultConfig())

		derived := c.DeriveKeys(ctx, password, [][]byte{salt(1), salt(2)}, params)

		assert.NoError(t, derived[string(salt(1))].Err)
		assert.NotEmpty(t, derived[string(salt(1))].Key)
		assert.ErrorIs(t, derived[string(salt(2))].Err, boom)
		assert.Nil(t, derived[string(salt(2))].Key)
	})

	t.Run("empty input", func(t *testing.T) {
		c := newTestCache(&countingDeriver{}, newFakeClock(), DefaultConfig())
		assert.Empty(t, c.DeriveKeys(ctx, password, nil, params))
	})
}

func TestKeyCache_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	params := cryptoDomain.DefaultKDFParams()
	clock := newFakeClock()
	c := newTestCache(&countingDeriver{}, clock, DefaultConfig())

	_, err := c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(1), params)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	_, err = c.GetOrDeriveKey(ctx, []byte("Tr0ub4dor&3"), salt(2), params)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 1, c.Stats().Size)
}

func TestKeyCache_StartClose(t *testing.T) {
	t.Run("background cleanup removes expired entries", func(t *testing.T) {
		clock := newFakeClock()
		cfg := DefaultConfig()
		cfg.CleanupInterval = 10 * time.Millisecond
		c := newTestCache(&countingDeriver{}, clock, cfg)
		c.Start()
		defer c.Close()

		_, err := c.GetOrDeriveKey(context.Background(), []byte("Tr0ub4dor&3"), salt(1), cryptoDomain.DefaultKDFParams())
		require.NoError(t, err)

		clock.Advance(16 * time.Minute)
		assert.Eventually(t, func() bool {
			return c.Stats().Size == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("close without start", func(t *testing.T) {
		c := newTestCache(&countingDeriver{}, newFakeClock(), DefaultConfig())
		c.Close()
		c.Close()
		c.Start()
	})

	t.Run("close clears the cache", func(t *testing.T) {
		c := newTestCache(&countingDeriver{}, newFakeClock(), DefaultConfig())
		c.Start()

		_, err := c.GetOrDeriveKey(context.Background(), []byte("Tr0ub4dor&3"), salt(1), cryptoDomain.DefaultKDFParams())
		require.NoError(t, err)

		c.Close()
		assert.Equal(t, 0, c.Stats().Size)
	})
}

func TestFingerprint(t *testing.T) {
	params := cryptoDomain.DefaultKDFParams()

	fp := fingerprint([]byte("Tr0ub4dor&3"), salt(1), params)
	assert.Len(t, fp, 64)
	assert.NotContains(t, fp, "Tr0ub4dor")
	assert.Equal(t, fp, fingerprint([]byte("Tr0ub4dor&3"), salt(1), params))

	// Length prefixes keep the password/salt boundary unambiguous.
	a := fingerprint([]byte("ab"), append([]byte("c"), salt(1)...), params)
	b := fingerprint([]byte("abc"), salt(1), params)
	assert.NotEqual(t, a, b)
}
