package observability

import (
	"strconv"
	"sync"
	"time"
)

// RouteStats aggregates request outcomes for one route/method/status tuple.
type RouteStats struct {
	Count         int64   `json:"count"`
	TotalMillis   float64 `json:"total_ms"`
	MaxMillis     float64 `json:"max_ms"`
	AverageMillis float64 `json:"avg_ms"`
}

// Metrics keeps in-process request and error counters with latency
// aggregates, enough for the ops endpoint without an external collector.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]*RouteStats
	errors   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]*RouteStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest aggregates one completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	millis := float64(duration.Microseconds()) / 1000

	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[key]
	if !ok {
		stats = &RouteStats{}
		m.requests[key] = stats
	}
	stats.Count++
	stats.TotalMillis += millis
	if millis > stats.MaxMillis {
		stats.MaxMillis = millis
	}
}

// RecordError counts one error response by route and domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path+"|"+method+"|"+code]++
}

// Snapshot returns a copy of the counters with averages filled in.
func (m *Metrics) Snapshot() (map[string]RouteStats, map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := make(map[string]RouteStats, len(m.requests))
	for key, stats := range m.requests {
		out := *stats
		if out.Count > 0 {
			out.AverageMillis = out.TotalMillis / float64(out.Count)
		}
		requests[key] = out
	}
	errors := make(map[string]int64, len(m.errors))
	for key, count := range m.errors {
		errors[key] = count
	}
	return requests, errors
}
