package cache

import (
	"context"
	"time"
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Evictions int64 `json:"evictions"`
}

// HitRate is hits over total lookups, in percent.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store is a TTL cache for upstream response payloads. Implementations are
// safe for concurrent use.
type Store interface {
	// Get returns the cached payload and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
	// Delete removes a single key, reporting whether it existed.
	Delete(ctx context.Context, key string) bool
	// DeletePattern removes every key containing pattern, returning the count.
	DeletePattern(ctx context.Context, pattern string) int
	// Clear removes all entries.
	Clear(ctx context.Context)
	// Stats returns a snapshot of the counters.
	Stats(ctx context.Context) Stats
}
