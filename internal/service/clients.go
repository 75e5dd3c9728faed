package service

import (
	"context"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/upstream"
)

// Default bounds applied when callers pass zero values.
const (
	DefaultPageLimit      = 20
	DefaultSearchLimit    = 25
	DefaultSolutionLimit  = 3
	DefaultActionLimit    = 3
	DefaultLookbackDays   = 7
	actionFetchBatchLimit = 100
)

// TicketClient is the ticketing-system surface the cockpit consumes.
type TicketClient interface {
	FetchIncidentDetails(ctx context.Context, number string) (*domain.Incident, error)
	FetchTechnicianPage(ctx context.Context, technician string, limit, offset int) (domain.IncidentPage, error)
	FetchIncidentsByUser(ctx context.Context, userName string, limit int) ([]domain.Incident, error)
	FetchIncidentsByDevice(ctx context.Context, deviceName string, limit int) ([]domain.Incident, error)
}

// DeviceClient is the device-management surface the cockpit consumes.
type DeviceClient interface {
	DevicesByOwner(ctx context.Context, ownerUPN string) ([]domain.DeviceSummary, error)
	DeviceByName(ctx context.Context, deviceName string) (*domain.DeviceDetail, error)
}

// ActionClient is the diagnostics surface the cockpit consumes.
type ActionClient interface {
	RemoteActions(ctx context.Context, deviceName string, days, limit int) ([]domain.RemoteAction, error)
	ExecuteAction(ctx context.Context, req upstream.ExecuteActionRequest) (*upstream.ExecuteActionResult, error)
}
