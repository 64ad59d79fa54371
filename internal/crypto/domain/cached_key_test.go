package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCachedKey_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	key := []byte{1, 2, 3, 4}

	entry := NewCachedKey(key, now, 15*time.Minute)

	assert.Equal(t, now, entry.CreatedAt)
	assert.Equal(t, now.Add(15*time.Minute), entry.ExpiresAt)
	assert.Equal(t, int64(1), entry.UsageCount)
	assert.False(t, entry.IsExpired(now.Add(14*time.Minute)))
	assert.True(t, entry.IsExpired(now.Add(15*time.Minute)))

	later := now.Add(time.Minute)
	entry.Touch(later)
	assert.Equal(t, later, entry.LastUsedAt)
	assert.Equal(t, int64(2), entry.UsageCount)

	entry.Destroy()
	assert.Nil(t, entry.Key)
	assert.Equal(t, []byte{0, 0, 0, 0}, key)
}

func TestDecryptionResult(t *testing.T) {
	ok := SucceededWith("salary:150000")
	assert.True(t, ok.Success)
	assert.Equal(t, "salary:150000", ok.Data)
	assert.Empty(t, ok.Error)
	assert.Equal(t, StateSuccess, ok.State)

	failed := FailedWith(ReasonDecryptionFailed, "cipher: message authentication failed")
	assert.False(t, failed.Success)
	assert.Empty(t, failed.Data)
	assert.Equal(t, GenericDecryptionError, failed.Error)
	assert.Equal(t, StateFailed, failed.State)

	invalid := FailedWith(ReasonMissingField, "missing field: iv")
	assert.Equal(t, "missing field: iv", invalid.Error)
	assert.Equal(t, ReasonMissingField, invalid.Reason)

	assert.Equal(t, StateDecrypting, failed.At(StateDecrypting).FailedAt)
	assert.Empty(t, ok.At(StateDecrypting).FailedAt)
}
