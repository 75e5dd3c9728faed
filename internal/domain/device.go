package domain

import (
	"regexp"
	"time"
)

// ComplianceState enumerates device compliance/health states reported by
// the device-management system.
type ComplianceState string

const (
	ComplianceStateCompliant     ComplianceState = "compliant"
	ComplianceStateNonCompliant  ComplianceState = "noncompliant"
	ComplianceStateInGracePeriod ComplianceState = "inGracePeriod"
	ComplianceStateUnknown       ComplianceState = "unknown"
)

// DeviceSummary is the short device record returned by the owner→devices
// lookup. Order is upstream order and must be preserved.
type DeviceSummary struct {
	ID           string
	Name         string
	SerialNumber string
	Owner        string
}

// DeviceDetail is the full managed-device record keyed by device name.
// Immutable once fetched; discarded when the ticket selection changes.
type DeviceDetail struct {
	ID                string
	Name              string
	Owner             string
	OwnerDisplayName  string
	Manufacturer      string
	Model             string
	SerialNumber      string
	OperatingSystem   string
	OSVersion         string
	Compliance        ComplianceState
	Encrypted         bool
	EnrolledAt        time.Time
	LastSyncAt        time.Time
	TotalStorageBytes int64
	FreeStorageBytes  int64
	Network           *DeviceNetwork
}

// DeviceNetwork carries optional network attributes.
type DeviceNetwork struct {
	IPAddress      string
	MACAddress     string
	ConnectionType string
	VPNConnected   bool
}

// Common corporate hostname prefixes, tried in order.
var deviceNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(CPC-[A-Za-z0-9-]+)\b`),
	regexp.MustCompile(`(?i)\b(LAPTOP-[A-Za-z0-9-]+)\b`),
	regexp.MustCompile(`(?i)\b(DESKTOP-[A-Za-z0-9-]+)\b`),
	regexp.MustCompile(`(?i)\b(WIN-[A-Za-z0-9-]+)\b`),
	regexp.MustCompile(`(?i)\b(PC-[A-Za-z0-9-]+)\b`),
	regexp.MustCompile(`(?i)\b(WS-[A-Za-z0-9-]+)\b`),
}

// ExtractDeviceName pulls a hostname out of free text using common device
// naming patterns. Returns "" when nothing matches.
func ExtractDeviceName(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range deviceNamePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// NormalizeCompliance maps an upstream compliance label to the enum.
func NormalizeCompliance(raw string) ComplianceState {
	switch raw {
	case "compliant":
		return ComplianceStateCompliant
	case "noncompliant", "nonCompliant":
		return ComplianceStateNonCompliant
	case "inGracePeriod":
		return ComplianceStateInGracePeriod
	default:
		return ComplianceStateUnknown
	}
}
