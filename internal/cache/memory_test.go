package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "a", []byte("payload"), time.Minute)
	got, ok := m.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	stats := m.Stats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.Size)
}

func TestMemoryExpiryIsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Set(ctx, "a", []byte("x"), time.Minute)

	current = current.Add(2 * time.Minute)
	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)

	stats := m.Stats(ctx)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, stats.Size, "expired entry removed on access")
}

func TestMemoryEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	for i := 0; i < 10; i++ {
		m.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), time.Hour)
		current = current.Add(time.Second)
	}

	// At capacity: the next insert evicts the oldest tenth (one entry).
	m.Set(ctx, "key-new", []byte("v"), time.Hour)

	_, ok := m.Get(ctx, "key-0")
	assert.False(t, ok, "oldest entry evicted")
	_, ok = m.Get(ctx, "key-1")
	assert.True(t, ok, "younger entries survive")
	_, ok = m.Get(ctx, "key-new")
	assert.True(t, ok)

	assert.Equal(t, int64(1), m.Stats(ctx).Evictions)
}

func TestMemoryDeletePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	m.Set(ctx, "solution:INC1", []byte("v"), time.Hour)
	m.Set(ctx, "solution:INC2", []byte("v"), time.Hour)
	m.Set(ctx, "device:HOST-1", []byte("v"), time.Hour)

	removed := m.DeletePattern(ctx, "solution:")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, m.Stats(ctx).Size)
}

func TestMemoryCleanupExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Set(ctx, "short", []byte("v"), time.Second)
	m.Set(ctx, "long", []byte("v"), time.Hour)

	current = current.Add(time.Minute)
	assert.Equal(t, 1, m.CleanupExpired())
	assert.Equal(t, 1, m.Stats(ctx).Size)
}

func TestStatsHitRate(t *testing.T) {
	s := Stats{Hits: 3, Misses: 1}
	assert.InDelta(t, 75.0, s.HitRate(), 0.0001)
	assert.Zero(t, Stats{}.HitRate())
}
