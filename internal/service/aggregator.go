package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
	"github.com/spec-kit/cockpit-service/internal/upstream"
)

// Slot failure messages. Explicit-empty uses a specific per-slot message,
// distinct from the generic transport/upstream failure text.
const (
	msgSolutionEmpty     = "no solution summary found"
	msgActionsEmpty      = "no recommendations available"
	msgDeviceUnavailable = "device information not available for this incident"
)

// SolutionProvider produces guidance points for an incident. An empty
// summary is explicit-empty, not an error.
type SolutionProvider interface {
	Summarize(ctx context.Context, incident domain.Incident, deviceName string, limit int) (domain.SolutionSummary, error)
}

// ActionRecommender ranks remote actions against an incident. A
// zero-length result is explicit-empty, not an error.
type ActionRecommender interface {
	Recommend(ctx context.Context, incident domain.Incident, deviceName string, limit int) ([]domain.RemoteAction, error)
}

// slotPatch applies one settled slot result to a view-model. Patches are
// handed to the owner, which decides at apply time whether they are still
// current (see DetailSession).
type slotPatch func(*domain.TicketDetailView)

// DetailAggregator runs the four-branch fan-out for one selected incident:
// ticket re-fetch, device detail (behind device-name resolution), solution
// summary, and recommended actions. Each branch settles its own slot
// independently of the others' success or failure.
type DetailAggregator struct {
	tickets     TicketClient
	devices     DeviceClient
	resolver    *DeviceResolver
	solutions   SolutionProvider
	recommender ActionRecommender
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// AggregatorDependencies bundles collaborators for the detail aggregator.
type AggregatorDependencies struct {
	Tickets     TicketClient
	Devices     DeviceClient
	Resolver    *DeviceResolver
	Solutions   SolutionProvider
	Recommender ActionRecommender
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewDetailAggregator constructs the aggregator.
func NewDetailAggregator(deps AggregatorDependencies) *DetailAggregator {
	return &DetailAggregator{
		tickets:     deps.Tickets,
		devices:     deps.Devices,
		resolver:    deps.Resolver,
		solutions:   deps.Solutions,
		recommender: deps.Recommender,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// Load launches the four branches for the given incident snapshot and
// reports each settlement through apply, exactly once per slot. It returns
// without waiting for the branches; no branch's failure stops another.
//
// The solution and recommendation branches go out with whatever device
// name the snapshot carried at call time. They are not re-issued when the
// device branch later resolves a name the snapshot lacked.
func (a *DetailAggregator) Load(ctx context.Context, snapshot domain.Incident, technician string, apply func(slotPatch)) {
	knownDevice := ""
	if domain.UsableDeviceName(snapshot.DeviceName) {
		knownDevice = snapshot.DeviceName
	}

	go a.loadTicket(ctx, snapshot, technician, apply)
	go a.loadDevice(ctx, snapshot, apply)
	go a.loadSolution(ctx, snapshot, knownDevice, apply)
	go a.loadActions(ctx, snapshot, knownDevice, apply)
}

// loadTicket re-fetches the canonical incident. The displayed ticket never
// ends up empty: on any failure the caller-supplied snapshot stands.
func (a *DetailAggregator) loadTicket(ctx context.Context, snapshot domain.Incident, technician string, apply func(slotPatch)) {
	refreshed, err := a.tickets.FetchIncidentDetails(ctx, snapshot.Number)
	if err != nil || refreshed == nil {
		if err != nil {
			a.logger.Warn("ticket re-fetch failed, keeping snapshot",
				zap.String("number", snapshot.Number), zap.Error(err))
		}
		apply(func(v *domain.TicketDetailView) {
			v.Ticket = domain.TicketSlot{State: domain.SlotReady, Ticket: snapshot}
		})
		return
	}

	apply(func(v *domain.TicketDetailView) {
		v.Ticket = domain.TicketSlot{State: domain.SlotReady, Ticket: *refreshed}
	})

	if refreshed.HasDeviceName() && !domain.UsableDeviceName(snapshot.DeviceName) {
		a.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Type:       events.EventDeviceNameLearned,
			Technician: technician,
			Timestamp:  time.Now().UTC(),
			Payload: events.DeviceNameLearnedPayload{
				IncidentNumber: refreshed.Number,
				DeviceName:     refreshed.DeviceName,
			},
		})
	}
}

// loadDevice resolves the device name, then fetches detail. A missing
// device name is a slot failure with a specific message, issued without a
// detail call; resolution lookup failure is a slot failure, never a panic
// of the whole aggregation.
func (a *DetailAggregator) loadDevice(ctx context.Context, snapshot domain.Incident, apply func(slotPatch)) {
	name, ok, err := a.resolver.Resolve(ctx, snapshot.DeviceName, snapshot.CallerID)
	if err != nil {
		msg := slotFailureMessage(err, "device information")
		apply(func(v *domain.TicketDetailView) {
			v.Device = domain.DeviceSlot{State: domain.SlotFailed, Err: msg}
		})
		return
	}
	if !ok {
		apply(func(v *domain.TicketDetailView) {
			v.Device = domain.DeviceSlot{State: domain.SlotFailed, Err: msgDeviceUnavailable}
		})
		return
	}

	apply(func(v *domain.TicketDetailView) {
		v.ResolvedDeviceName = name
	})

	detail, err := a.devices.DeviceByName(ctx, name)
	switch {
	case err != nil:
		msg := slotFailureMessage(err, "device information")
		apply(func(v *domain.TicketDetailView) {
			v.Device = domain.DeviceSlot{State: domain.SlotFailed, Err: msg}
		})
	case detail == nil:
		apply(func(v *domain.TicketDetailView) {
			v.Device = domain.DeviceSlot{State: domain.SlotFailed, Err: msgDeviceUnavailable}
		})
	default:
		apply(func(v *domain.TicketDetailView) {
			v.Device = domain.DeviceSlot{State: domain.SlotReady, Device: *detail}
		})
	}
}

func (a *DetailAggregator) loadSolution(ctx context.Context, snapshot domain.Incident, deviceName string, apply func(slotPatch)) {
	summary, err := a.solutions.Summarize(ctx, snapshot, deviceName, DefaultSolutionLimit)
	switch {
	case err != nil:
		msg := slotFailureMessage(err, "solution summary")
		apply(func(v *domain.TicketDetailView) {
			v.Solution = domain.SolutionSlot{State: domain.SlotFailed, Err: msg}
		})
	case summary.Empty():
		apply(func(v *domain.TicketDetailView) {
			v.Solution = domain.SolutionSlot{State: domain.SlotFailed, Err: msgSolutionEmpty}
		})
	default:
		apply(func(v *domain.TicketDetailView) {
			v.Solution = domain.SolutionSlot{State: domain.SlotReady, Summary: summary}
		})
	}
}

func (a *DetailAggregator) loadActions(ctx context.Context, snapshot domain.Incident, deviceName string, apply func(slotPatch)) {
	actions, err := a.recommender.Recommend(ctx, snapshot, deviceName, DefaultActionLimit)
	switch {
	case err != nil:
		msg := slotFailureMessage(err, "recommendations")
		apply(func(v *domain.TicketDetailView) {
			v.Actions = domain.ActionsSlot{State: domain.SlotFailed, Err: msg}
		})
	case len(actions) == 0:
		apply(func(v *domain.TicketDetailView) {
			v.Actions = domain.ActionsSlot{State: domain.SlotFailed, Err: msgActionsEmpty}
		})
	default:
		apply(func(v *domain.TicketDetailView) {
			v.Actions = domain.ActionsSlot{State: domain.SlotReady, Actions: actions}
		})
	}
}

// slotFailureMessage maps an upstream error to slot-level text: transport
// failures read "temporarily unavailable", explicit upstream failures use
// the upstream message when it says anything.
func slotFailureMessage(err error, label string) string {
	if upstream.IsTransport(err) {
		return label + " temporarily unavailable"
	}
	if ue, ok := upstream.AsUpstreamError(err); ok && ue.Message != "" {
		return ue.Message
	}
	return label + " unavailable"
}
