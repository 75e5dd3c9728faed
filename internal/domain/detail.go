package domain

// SlotState is the lifecycle of one independent result channel in the
// aggregated detail view. Exactly one state holds at any time.
type SlotState string

const (
	SlotLoading SlotState = "loading"
	SlotReady   SlotState = "ready"
	SlotFailed  SlotState = "failed"
)

// TicketSlot holds the refreshed incident or the caller-supplied snapshot.
type TicketSlot struct {
	State  SlotState
	Ticket Incident
}

// DeviceSlot holds the device detail or a failure message.
type DeviceSlot struct {
	State  SlotState
	Device DeviceDetail
	Err    string
}

// SolutionSlot holds the solution summary or a failure message.
type SolutionSlot struct {
	State   SlotState
	Summary SolutionSummary
	Err     string
}

// ActionsSlot holds recommended actions or a failure message.
type ActionsSlot struct {
	State   SlotState
	Actions []RemoteAction
	Err     string
}

// TicketDetailView is the merged output of the detail aggregation: the
// ticket plus three independent slots, each settling on its own. A view
// never mixes data from two different ticket selections.
type TicketDetailView struct {
	Generation uint64
	Number     string
	// ResolvedDeviceName is the best-effort device name the aggregation
	// worked with, empty when resolution found nothing.
	ResolvedDeviceName string
	Ticket             TicketSlot
	Device             DeviceSlot
	Solution           SolutionSlot
	Actions            ActionsSlot
}

// NewTicketDetailView returns a view with all slots loading.
func NewTicketDetailView(generation uint64, snapshot Incident) TicketDetailView {
	return TicketDetailView{
		Generation: generation,
		Number:     snapshot.Number,
		Ticket:     TicketSlot{State: SlotLoading, Ticket: snapshot},
		Device:     DeviceSlot{State: SlotLoading},
		Solution:   SolutionSlot{State: SlotLoading},
		Actions:    ActionsSlot{State: SlotLoading},
	}
}

// Settled reports whether every slot has reached a terminal state.
func (v TicketDetailView) Settled() bool {
	return v.Ticket.State != SlotLoading &&
		v.Device.State != SlotLoading &&
		v.Solution.State != SlotLoading &&
		v.Actions.State != SlotLoading
}
