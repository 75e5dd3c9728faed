package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
	"github.com/spec-kit/cockpit-service/internal/repository"
	"github.com/spec-kit/cockpit-service/internal/upstream"
	util "github.com/spec-kit/cockpit-service/pkg/util"
)

// ExecuteInput is one remote action execution request.
type ExecuteInput struct {
	ActionID   string
	ActionName string
	DeviceName string
	Parameters map[string]string
}

// ExecuteOutcome reports the upstream acknowledgement plus the local run id.
type ExecuteOutcome struct {
	RunID     string
	RequestID string
	Status    domain.ActionStatus
	Message   string
}

// ActionService lists remote action history and executes actions, keeping a
// local run record and an audit trail for every execution.
type ActionService struct {
	client     ActionClient
	runs       repository.ActionRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ActionDependencies bundles collaborators for the action service.
type ActionDependencies struct {
	Client     ActionClient
	Runs       repository.ActionRepository
	Audit      repository.AuditRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewActionService constructs the service.
func NewActionService(deps ActionDependencies) *ActionService {
	return &ActionService{
		client:     deps.Client,
		runs:       deps.Runs,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// History returns remote actions executed on a device, most recent first.
func (s *ActionService) History(ctx context.Context, deviceName string, days, limit int) ([]domain.RemoteAction, error) {
	if days <= 0 {
		days = DefaultLookbackDays
	}
	if limit <= 0 {
		limit = actionFetchBatchLimit
	}
	return s.client.RemoteActions(ctx, deviceName, days, limit)
}

// Execute submits a remote action, records the run locally, and publishes
// an audit event. Validation failures never reach the upstream.
func (s *ActionService) Execute(ctx context.Context, technician string, input ExecuteInput) (*ExecuteOutcome, error) {
	if input.ActionID == "" || input.DeviceName == "" {
		return nil, util.NewValidationError("action id and device name are required", nil)
	}

	result, err := s.client.ExecuteAction(ctx, upstream.ExecuteActionRequest{
		ActionID:   input.ActionID,
		DeviceName: input.DeviceName,
		Parameters: input.Parameters,
	})
	if err != nil {
		return nil, err
	}

	status := domain.NormalizeActionStatus(result.Status)
	run := &repository.ActionRun{
		ActionID:   input.ActionID,
		ActionName: input.ActionName,
		DeviceName: input.DeviceName,
		Technician: technician,
		RequestID:  result.RequestID,
		Status:     string(status),
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.logger.Warn("action run persistence failed",
			zap.String("action_id", input.ActionID), zap.Error(err))
	}
	if err := s.audit.Record(ctx, technician, "execute_remote_action", "remote_action", map[string]any{
		"action_id":  input.ActionID,
		"device":     input.DeviceName,
		"request_id": result.RequestID,
	}); err != nil {
		s.logger.Warn("audit record failed", zap.Error(err))
	}

	s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventActionExecuted,
		Technician: technician,
		Timestamp:  time.Now().UTC(),
		Payload: events.ActionExecutedPayload{
			ActionID:   input.ActionID,
			DeviceName: input.DeviceName,
			RequestID:  result.RequestID,
			Status:     string(status),
		},
	})

	return &ExecuteOutcome{
		RunID:     run.ID,
		RequestID: result.RequestID,
		Status:    status,
		Message:   result.Message,
	}, nil
}
