package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	payload []byte
	expiry  time.Time
	created time.Time
}

// Memory is an in-process TTL cache with oldest-first eviction and
// hit/miss statistics.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxSize int

	hits      int64
	misses    int64
	sets      int64
	evictions int64

	now func() time.Time
}

// NewMemory builds a cache bounded to maxSize entries.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the payload when present and not expired. Expired entries are
// removed on access and count as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if ok {
		if m.now().Before(entry.expiry) {
			m.hits++
			return entry.payload, true
		}
		delete(m.entries, key)
	}
	m.misses++
	return nil, false
}

// Set stores payload for ttl, evicting the oldest tenth of entries when at
// capacity.
func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictOldest()
	}
	now := m.now()
	m.entries[key] = memoryEntry{payload: payload, expiry: now.Add(ttl), created: now}
	m.sets++
}

// Delete removes key, reporting whether it existed.
func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

// DeletePattern removes every key containing pattern.
func (m *Memory) DeletePattern(_ context.Context, pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
			count++
		}
	}
	return count
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// CleanupExpired removes entries past their TTL, returning the count.
func (m *Memory) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	count := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiry) {
			delete(m.entries, key)
			count++
		}
	}
	return count
}

// Stats returns a snapshot of the counters.
func (m *Memory) Stats(_ context.Context) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Size:      len(m.entries),
		Hits:      m.hits,
		Misses:    m.misses,
		Sets:      m.sets,
		Evictions: m.evictions,
	}
}

// evictOldest drops the oldest 10% of entries by creation time, at least one.
// Caller holds the lock.
func (m *Memory) evictOldest() {
	type aged struct {
		key     string
		created time.Time
	}
	all := make([]aged, 0, len(m.entries))
	for key, entry := range m.entries {
		all = append(all, aged{key: key, created: entry.created})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].created.Before(all[j].created) })

	evict := len(all) / 10
	if evict < 1 {
		evict = 1
	}
	for _, a := range all[:evict] {
		delete(m.entries, a.key)
		m.evictions++
	}
}
