package domain

import "time"

// ActionStatus enumerates remote-action execution outcomes.
type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusFailure ActionStatus = "failure"
	ActionStatusPending ActionStatus = "pending"
	ActionStatusOther   ActionStatus = "other"
)

// RemoteAction is a diagnostics-system remote action, either a historical
// execution record or a recommendation candidate.
type RemoteAction struct {
	ID         string
	Name       string
	Type       string
	Purpose    string
	Status     ActionStatus
	RawStatus  string
	DeviceName string
	ExecutedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// Result is the opaque execution payload (inputs, outputs, details).
	Result map[string]any
}

// NormalizeActionStatus maps upstream execution status labels to the enum.
func NormalizeActionStatus(raw string) ActionStatus {
	switch raw {
	case "success", "succeeded", "completed":
		return ActionStatusSuccess
	case "failure", "failed", "error":
		return ActionStatusFailure
	case "pending", "running", "in_progress", "initiated":
		return ActionStatusPending
	default:
		return ActionStatusOther
	}
}
