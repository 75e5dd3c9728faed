package service

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// healthHistoryLimit bounds per-service history, roughly a few days at
// five-minute check intervals.
const healthHistoryLimit = 1000

// Pinger is one upstream's connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckRecord is one probe outcome.
type HealthCheckRecord struct {
	Service   string    `json:"service"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DowntimePeriod is one contiguous unhealthy stretch. End is zero while
// the outage is ongoing.
type DowntimePeriod struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end,omitempty"`
	DurationMinutes float64   `json:"duration_minutes"`
	Ongoing         bool      `json:"ongoing"`
}

// UptimeStats summarizes a service's probe history over a window.
type UptimeStats struct {
	Service              string           `json:"service"`
	WindowHours          int              `json:"window_hours"`
	TotalChecks          int              `json:"total_checks"`
	HealthyChecks        int              `json:"healthy_checks"`
	UptimePercentage     float64          `json:"uptime_percentage"`
	DowntimePercentage   float64          `json:"downtime_percentage"`
	TotalDowntimeMinutes float64          `json:"total_downtime_minutes"`
	CurrentState         string           `json:"current_state"`
	LastStateChange      *time.Time       `json:"last_state_change,omitempty"`
	DowntimePeriods      []DowntimePeriod `json:"downtime_periods"`
}

// HealthTracker probes the upstreams and keeps an in-memory history ring
// per service for uptime reporting.
type HealthTracker struct {
	logger *zap.Logger
	now    func() time.Time

	mu              sync.Mutex
	pingers         map[string]Pinger
	order           []string
	history         map[string][]HealthCheckRecord
	currentState    map[string]string
	lastStateChange map[string]time.Time
}

// NewHealthTracker constructs a tracker over the given named probes.
func NewHealthTracker(pingers map[string]Pinger, logger *zap.Logger) *HealthTracker {
	t := &HealthTracker{
		logger:          logger,
		now:             time.Now,
		pingers:         pingers,
		history:         make(map[string][]HealthCheckRecord, len(pingers)),
		currentState:    make(map[string]string, len(pingers)),
		lastStateChange: make(map[string]time.Time, len(pingers)),
	}
	for name := range pingers {
		t.order = append(t.order, name)
		t.currentState[name] = "unknown"
	}
	return t
}

// CheckAll probes every registered upstream and records the outcomes.
func (t *HealthTracker) CheckAll(ctx context.Context) map[string]HealthCheckRecord {
	t.mu.Lock()
	names := append([]string{}, t.order...)
	t.mu.Unlock()

	out := make(map[string]HealthCheckRecord, len(names))
	for _, name := range names {
		out[name] = t.Check(ctx, name)
	}
	return out
}

// Check probes one upstream and records the outcome.
func (t *HealthTracker) Check(ctx context.Context, service string) HealthCheckRecord {
	t.mu.Lock()
	pinger, ok := t.pingers[service]
	t.mu.Unlock()
	if !ok {
		return HealthCheckRecord{Service: service, Timestamp: t.now()}
	}

	record := HealthCheckRecord{Service: service, Healthy: true, Timestamp: t.now()}
	if err := pinger.Ping(ctx); err != nil {
		record.Healthy = false
		record.Error = err.Error()
	}
	t.Record(record)
	return record
}

// Record appends one probe outcome and tracks state transitions.
func (t *HealthTracker) Record(record HealthCheckRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	history := append(t.history[record.Service], record)
	if len(history) > healthHistoryLimit {
		history = history[len(history)-healthHistoryLimit:]
	}
	t.history[record.Service] = history

	state := "healthy"
	if !record.Healthy {
		state = "unhealthy"
	}
	if t.currentState[record.Service] != state {
		t.logger.Info("upstream state changed",
			zap.String("service", record.Service),
			zap.String("previous", t.currentState[record.Service]),
			zap.String("state", state))
		t.currentState[record.Service] = state
		t.lastStateChange[record.Service] = record.Timestamp
	}
}

// UptimeStats reports uptime over the trailing window for one service.
func (t *HealthTracker) UptimeStats(service string, hours int) UptimeStats {
	if hours <= 0 {
		hours = 24
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-time.Duration(hours) * time.Hour)
	var recent []HealthCheckRecord
	for _, record := range t.history[service] {
		if !record.Timestamp.Before(cutoff) {
			recent = append(recent, record)
		}
	}

	stats := UptimeStats{
		Service:         service,
		WindowHours:     hours,
		CurrentState:    t.currentState[service],
		DowntimePeriods: []DowntimePeriod{},
	}
	if changed, ok := t.lastStateChange[service]; ok && !changed.IsZero() {
		stats.LastStateChange = &changed
	}
	if len(recent) == 0 {
		return stats
	}

	stats.TotalChecks = len(recent)
	for _, record := range recent {
		if record.Healthy {
			stats.HealthyChecks++
		}
	}
	stats.UptimePercentage = round2(float64(stats.HealthyChecks) / float64(stats.TotalChecks) * 100)
	stats.DowntimePercentage = round2(100 - stats.UptimePercentage)
	stats.DowntimePeriods = t.downtimePeriods(recent)
	for _, period := range stats.DowntimePeriods {
		stats.TotalDowntimeMinutes += period.DurationMinutes
	}
	return stats
}

// AllStats reports uptime for every registered service.
func (t *HealthTracker) AllStats(hours int) map[string]UptimeStats {
	t.mu.Lock()
	names := append([]string{}, t.order...)
	t.mu.Unlock()

	out := make(map[string]UptimeStats, len(names))
	for _, name := range names {
		out[name] = t.UptimeStats(name, hours)
	}
	return out
}

// RecentHistory returns the newest records for a service, newest last.
func (t *HealthTracker) RecentHistory(service string, limit int) []HealthCheckRecord {
	if limit <= 0 {
		limit = 50
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	history := t.history[service]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]HealthCheckRecord, len(history))
	copy(out, history)
	return out
}

// downtimePeriods folds a sorted record list into contiguous outages.
func (t *HealthTracker) downtimePeriods(records []HealthCheckRecord) []DowntimePeriod {
	periods := []DowntimePeriod{}
	var start time.Time

	for _, record := range records {
		if !record.Healthy {
			if start.IsZero() {
				start = record.Timestamp
			}
			continue
		}
		if !start.IsZero() {
			periods = append(periods, DowntimePeriod{
				Start:           start,
				End:             record.Timestamp,
				DurationMinutes: round2(record.Timestamp.Sub(start).Minutes()),
			})
			start = time.Time{}
		}
	}
	if !start.IsZero() {
		periods = append(periods, DowntimePeriod{
			Start:           start,
			DurationMinutes: round2(t.now().Sub(start).Minutes()),
			Ongoing:         true,
		})
	}
	return periods
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
