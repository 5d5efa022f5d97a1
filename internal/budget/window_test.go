package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowUnlimitedWhenLimitNonPositive(t *testing.T) {
	w := New(0, time.Minute, "unlimited")
	now := time.Now()
	for i := 0; i < 100; i++ {
		assert.True(t, w.Allow(now))
		w.Record(now)
	}
}

func TestWindowBlocksAfterLimitReached(t *testing.T) {
	w := New(3, time.Minute, "per-minute")
	now := time.Now()
	for i := 0; i < 3; i++ {
		assert.True(t, w.Allow(now))
		w.Record(now)
	}
	assert.False(t, w.Allow(now))
}

func TestWindowAgesOutEntries(t *testing.T) {
	w := New(1, 100*time.Millisecond, "short")
	now := time.Now()
	w.Record(now)
	assert.False(t, w.Allow(now))
	assert.True(t, w.Allow(now.Add(200*time.Millisecond)))
}

func TestWindowRemaining(t *testing.T) {
	w := New(2, time.Minute, "r")
	now := time.Now()
	assert.Equal(t, 2, w.Remaining(now))
	w.Record(now)
	assert.Equal(t, 1, w.Remaining(now))
	w.Record(now)
	assert.Equal(t, 0, w.Remaining(now))
}

func TestWindowTryRecordIsAtomic(t *testing.T) {
	w := New(1, time.Minute, "atomic")
	now := time.Now()
	assert.True(t, w.TryRecord(now))
	assert.False(t, w.TryRecord(now))
}
