package domain

import (
	"strconv"
	"strings"
	"time"
)

// DeviceNameSentinel is the placeholder the ticketing system uses when an
// incident has no configuration item. It means "field absent" and must not
// be treated as a real device name.
const DeviceNameSentinel = "Not Available"

// IncidentStatus enumerates ticket lifecycle states as displayed.
type IncidentStatus string

const (
	IncidentStatusNew        IncidentStatus = "New"
	IncidentStatusOpen       IncidentStatus = "Open"
	IncidentStatusInProgress IncidentStatus = "In Progress"
	IncidentStatusPending    IncidentStatus = "Pending"
	IncidentStatusResolved   IncidentStatus = "Resolved"
	IncidentStatusClosed     IncidentStatus = "Closed"
	IncidentStatusCancelled  IncidentStatus = "Cancelled"
)

// IncidentPriority is the canonical display priority.
type IncidentPriority string

const (
	IncidentPriorityHigh   IncidentPriority = "High"
	IncidentPriorityMedium IncidentPriority = "Medium"
	IncidentPriorityLow    IncidentPriority = "Low"
)

// Incident is a read-only view of a ticket from the upstream ticketing
// system. The only field ever mutated locally is DeviceName, which the list
// cache may backfill for display continuity.
type Incident struct {
	SysID       string
	Number      string
	Title       string
	Description string
	Category    string
	Status      IncidentStatus
	Priority    IncidentPriority
	// RawPriority keeps the upstream value ("Critical", "2 - Medium", ...)
	// as delivered, since display normalization is lossy.
	RawPriority string
	Active      bool
	AssignedTo  string
	DeviceName  string
	CallerID    string
	CallerName  string
	OpenedAt    time.Time
	UpdatedAt   time.Time
}

// HasDeviceName reports whether the incident carries a usable device name.
func (i Incident) HasDeviceName() bool {
	return UsableDeviceName(i.DeviceName)
}

// UsableDeviceName reports whether name is present and not the upstream
// "Not Available" sentinel.
func UsableDeviceName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && !strings.EqualFold(trimmed, DeviceNameSentinel)
}

// NormalizePriority maps an upstream priority value, numeric code or text
// label, to the canonical display priority. Codes: 1=High, 2=Medium,
// 3-5=Low. Any label containing "critical" normalizes to High.
func NormalizePriority(raw string) IncidentPriority {
	val := strings.TrimSpace(raw)
	if val == "" {
		return IncidentPriorityLow
	}
	lower := strings.ToLower(val)
	if strings.Contains(lower, "critical") {
		return IncidentPriorityHigh
	}
	// Upstream sometimes delivers "2 - Medium"; the leading code wins.
	if code, err := strconv.Atoi(firstToken(val)); err == nil {
		switch code {
		case 1:
			return IncidentPriorityHigh
		case 2:
			return IncidentPriorityMedium
		default:
			return IncidentPriorityLow
		}
	}
	switch {
	case strings.Contains(lower, "high"):
		return IncidentPriorityHigh
	case strings.Contains(lower, "medium"), strings.Contains(lower, "moderate"):
		return IncidentPriorityMedium
	default:
		return IncidentPriorityLow
	}
}

// NormalizeStatus maps an upstream state label to the canonical status enum.
// Unknown labels pass through as Open so a ticket is never rendered without
// a state.
func NormalizeStatus(raw string) IncidentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "1":
		return IncidentStatusNew
	case "open", "2":
		return IncidentStatusOpen
	case "in progress", "in_progress", "work in progress", "3":
		return IncidentStatusInProgress
	case "pending", "on hold", "awaiting user info", "4":
		return IncidentStatusPending
	case "resolved", "6":
		return IncidentStatusResolved
	case "closed", "7":
		return IncidentStatusClosed
	case "cancelled", "canceled", "8":
		return IncidentStatusCancelled
	default:
		return IncidentStatusOpen
	}
}

// ParseUpstreamTime parses the timestamp formats the upstreams deliver.
// A zero time is returned when nothing parses, mirroring how the cockpit
// sorts unparseable timestamps last.
func ParseUpstreamTime(raw string) time.Time {
	val := strings.TrimSpace(raw)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstToken(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '-' {
			return s[:i]
		}
	}
	return s
}
