package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventSessionStarted fires when a technician session becomes active
	// and the ticket list should load its first page.
	EventSessionStarted EventType = "session_started"
	// EventSessionEnded fires on logout or session teardown.
	EventSessionEnded EventType = "session_ended"
	// EventDeviceNameLearned fires when a detail fetch discovers a device
	// name that the ticket list snapshot was missing.
	EventDeviceNameLearned EventType = "device_name_learned"
	// EventActionExecuted fires after a remote action execution request
	// has been submitted upstream.
	EventActionExecuted EventType = "action_executed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Technician string      `json:"technician"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// DeviceNameLearnedPayload payload.
type DeviceNameLearnedPayload struct {
	IncidentNumber string `json:"incident_number"`
	DeviceName     string `json:"device_name"`
}

// ActionExecutedPayload payload.
type ActionExecutedPayload struct {
	ActionID   string `json:"action_id"`
	DeviceName string `json:"device_name"`
	RequestID  string `json:"request_id"`
	Status     string `json:"status"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
}
