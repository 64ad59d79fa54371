package domain

import "time"

// CachedKey is a derived key held by the key cache.
//
// Cached keys live only in process memory. They are never serialized and are zeroed
// when evicted or invalidated.
type CachedKey struct {
	Key        []byte
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time
	UsageCount int64
}

// NewCachedKey wraps freshly derived key material with a TTL deadline.
func NewCachedKey(key []byte, now time.Time, ttl time.Duration) *CachedKey {
	return &CachedKey{
		Key:        key,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastUsedAt: now,
		UsageCount: 1,
	}
}

// IsExpired reports whether the TTL deadline has passed.
func (c *CachedKey) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Touch records a cache hit.
func (c *CachedKey) Touch(now time.Time) {
	c.LastUsedAt = now
	c.UsageCount++
}

// Destroy zeroes the key material.
func (c *CachedKey) Destroy() {
	Zero(c.Key)
	c.Key = nil
}

// DerivedKey is the outcome of deriving the key for one salt of a batch.
type DerivedKey struct {
	Key []byte
	Err error
}
