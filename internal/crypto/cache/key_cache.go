// Package cache provides an in-memory, TTL- and capacity-bounded cache of derived keys
// so that repeated operations with the same password and salt skip the memory-hard
// derivation.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
	apperrors "github.com/allisson/compvault/internal/errors"
)

// Config holds the cache bounds.
type Config struct {
	TTL                   time.Duration
	Capacity              int
	CleanupInterval       time.Duration
	PrecomputeConcurrency int
}

// DefaultConfig returns a 15 minute TTL, 50 entries, cleanup every 5 minutes and a
// precompute concurrency of 5.
func DefaultConfig() Config {
	return Config{
		TTL:                   15 * time.Minute,
		Capacity:              50,
		CleanupInterval:       5 * time.Minute,
		PrecomputeConcurrency: 5,
	}
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size        int    `json:"size"`
	Capacity    int    `json:"capacity"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Derivations uint64 `json:"derivations"`
	Evictions   uint64 `json:"evictions"`
}

// Option configures a KeyCache.
type Option func(*KeyCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *KeyCache) {
		c.now = now
	}
}

// WithLogger sets the logger used by background cleanup.
func WithLogger(logger *slog.Logger) Option {
	return func(c *KeyCache) {
		c.logger = logger
	}
}

// KeyCache maps a fingerprint of (password, salt, params) to a derived key.
//
// The raw password is never stored. Cached key bytes are owned by the cache and zeroed
// on eviction, expiry and invalidation; callers always receive a copy. Failed
// derivations are never cached.
type KeyCache struct {
	deriver cryptoService.KeyDeriver
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
	group   singleflight.Group

	mu          sync.Mutex
	entries     map[string]*cryptoDomain.CachedKey
	generation  uint64
	hits        uint64
	misses      uint64
	derivations uint64
	evictions   uint64

	startOnce sync.Once
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New creates a KeyCache. Zero values in cfg fall back to DefaultConfig.
func New(deriver cryptoService.KeyDeriver, cfg Config, opts ...Option) *KeyCache {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	if cfg.PrecomputeConcurrency <= 0 {
		cfg.PrecomputeConcurrency = defaults.PrecomputeConcurrency
	}

	c := &KeyCache{
		deriver: deriver,
		cfg:     cfg,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries: make(map[string]*cryptoDomain.CachedKey),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrDeriveKey returns the cached key for (password, salt, params) or derives and
// caches it. The returned slice is a copy the caller should zero after use.
//
// Concurrent misses for the same fingerprint share one derivation.
func (c *KeyCache) GetOrDeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	fp := fingerprint(password, salt, params)

	c.mu.Lock()
	if entry, ok := c.entries[fp]; ok {
		now := c.now()
		if !entry.IsExpired(now) {
			entry.Touch(now)
			c.hits++
			key := bytes.Clone(entry.Key)
			c.mu.Unlock()
			return key, nil
		}
		c.removeLocked(fp)
	}
	c.misses++
	generation := c.generation
	c.mu.Unlock()

	for {
		v, err, shared := c.group.Do(fp, func() (any, error) {
			key, err := c.deriver.DeriveKey(ctx, password, salt, params)
			if err != nil {
				return nil, err
			}
			c.store(fp, key, generation)
			return key, nil
		})
		if err != nil {
			// A shared call cancelled by its leader's context says nothing about ours.
			if shared && ctx.Err() == nil && isContextError(err) {
				continue
			}
			return nil, err
		}

		key := v.([]byte)
		if shared {
			return bytes.Clone(key), nil
		}
		return key, nil
	}
}

// PrecomputeKeys derives and caches keys for every distinct salt with bounded
// concurrency. A failure for one salt does not stop the others; all failures are
// joined into the returned error.
func (c *KeyCache) PrecomputeKeys(
	ctx context.Context,
	password []byte,
	salts [][]byte,
	params cryptoDomain.KDFParams,
) error {
	derived := c.DeriveKeys(ctx, password, salts, params)

	var errs []error
	for _, d := range derived {
		if d.Err != nil {
			errs = append(errs, d.Err)
			continue
		}
		cryptoDomain.Zero(d.Key)
	}
	return apperrors.Join(errs...)
}

// DeriveKeys is PrecomputeKeys for callers that need the keys afterwards. It returns
// one entry per distinct salt, keyed by string(salt), and the caller owns and must zero
// every returned key. Keys evicted from the cache while the batch runs stay usable.
func (c *KeyCache) DeriveKeys(
	ctx context.Context,
	password []byte,
	salts [][]byte,
	params cryptoDomain.KDFParams,
) map[string]cryptoDomain.DerivedKey {
	derived := make(map[string]cryptoDomain.DerivedKey, len(salts))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(c.cfg.PrecomputeConcurrency)

	seen := make(map[string]struct{}, len(salts))
	for _, salt := range salts {
		id := string(salt)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			key, err := c.GetOrDeriveKey(ctx, password, salt, params)
			mu.Lock()
			derived[id] = cryptoDomain.DerivedKey{Key: key, Err: err}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return derived
}

// InvalidateAll drops and zeroes every cached key. Derivations in flight when it is
// called are not cached. Counters are kept.
func (c *KeyCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for fp := range c.entries {
		c.removeLocked(fp)
	}
}

// ClearAll drops and zeroes every cached key and resets the counters.
func (c *KeyCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for fp := range c.entries {
		c.removeLocked(fp)
	}
	c.hits, c.misses, c.derivations, c.evictions = 0, 0, 0, 0
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *KeyCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for fp, entry := range c.entries {
		if entry.IsExpired(now) {
			c.removeLocked(fp)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *KeyCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:        len(c.entries),
		Capacity:    c.cfg.Capacity,
		Hits:        c.hits,
		Misses:      c.misses,
		Derivations: c.derivations,
		Evictions:   c.evictions,
	}
}

// Start launches the background cleanup loop. Calling it more than once has no effect.
func (c *KeyCache) Start() {
	c.startOnce.Do(func() {
		go c.cleanupLoop()
	})
}

// Close stops the cleanup loop and clears the cache. It is safe to call more than once
// and without Start.
func (c *KeyCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		started := true
		c.startOnce.Do(func() { started = false })
		if started {
			<-c.done
		}
		c.ClearAll()
	})
}

func (c *KeyCache) cleanupLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := c.CleanupExpired(); removed > 0 {
				c.logger.Debug("expired derived keys removed", slog.Int("count", removed))
			}
		case <-c.stop:
			return
		}
	}
}

// store caches a copy of key unless the cache was invalidated after the lookup that
// triggered the derivation.
func (c *KeyCache) store(fp string, key []byte, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.derivations++
	if generation != c.generation {
		return
	}

	if _, ok := c.entries[fp]; ok {
		c.removeLocked(fp)
	}
	for len(c.entries) >= c.cfg.Capacity {
		c.evictOldestLocked()
	}
	c.entries[fp] = cryptoDomain.NewCachedKey(bytes.Clone(key), c.now(), c.cfg.TTL)
}

// evictOldestLocked removes the entry with the earliest CreatedAt. A linear scan is
// fine at this capacity.
func (c *KeyCache) evictOldestLocked() {
	var (
		oldestFP string
		oldest   *cryptoDomain.CachedKey
	)
	for fp, entry := range c.entries {
		if oldest == nil || entry.CreatedAt.Before(oldest.CreatedAt) {
			oldestFP, oldest = fp, entry
		}
	}
	if oldest != nil {
		c.removeLocked(oldestFP)
		c.evictions++
	}
}

func (c *KeyCache) removeLocked(fp string) {
	if entry, ok := c.entries[fp]; ok {
		entry.Destroy()
		delete(c.entries, fp)
	}
}

// fingerprint hashes the length-prefixed password, the salt and the encoded
// parameters into the cache lookup key.
func fingerprint(password, salt []byte, params cryptoDomain.KDFParams) string {
	h := sha256.New()

	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(password)))
	h.Write(length[:])
	h.Write(password)

	binary.BigEndian.PutUint64(length[:], uint64(len(salt)))
	h.Write(length[:])
	h.Write(salt)

	encoded, _ := params.MarshalBinary()
	h.Write(encoded)

	return hex.EncodeToString(h.Sum(nil))
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
