package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
	"github.com/spec-kit/cockpit-service/internal/repository"
	util "github.com/spec-kit/cockpit-service/pkg/util"
)

// ErrTicketNotFound is returned when neither the list cache nor the
// ticketing system knows the requested incident number.
var ErrTicketNotFound = util.NewNotFound("ticket", nil)

// CockpitService owns the per-technician state: one list cache and one
// detail session each, created lazily on first use.
type CockpitService struct {
	tickets    TicketClient
	aggregator *DetailAggregator
	dispatcher events.Dispatcher
	incidents  repository.IncidentRepository
	logger     *zap.Logger
	sub        events.Subscription

	mu       sync.Mutex
	sessions map[string]*technicianSession
}

type technicianSession struct {
	list   *ListCache
	detail *DetailSession
}

// CockpitDependencies bundles collaborators for the cockpit service.
type CockpitDependencies struct {
	Tickets    TicketClient
	Aggregator *DetailAggregator
	Dispatcher events.Dispatcher
	Incidents  repository.IncidentRepository
	Logger     *zap.Logger
}

// NewCockpitService constructs the service and subscribes the snapshot
// store to device-name backfills.
func NewCockpitService(deps CockpitDependencies) *CockpitService {
	s := &CockpitService{
		tickets:    deps.Tickets,
		aggregator: deps.Aggregator,
		dispatcher: deps.Dispatcher,
		incidents:  deps.Incidents,
		logger:     deps.Logger,
		sessions:   make(map[string]*technicianSession),
	}
	s.sub = s.dispatcher.Subscribe(events.EventDeviceNameLearned, s.onDeviceNameLearned)
	return s
}

func (s *CockpitService) onDeviceNameLearned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DeviceNameLearnedPayload)
	if !ok {
		return nil
	}
	if err := s.incidents.UpdateDeviceName(ctx, payload.IncidentNumber, payload.DeviceName); err != nil {
		s.logger.Warn("snapshot device backfill failed",
			zap.String("number", payload.IncidentNumber), zap.Error(err))
	}
	return nil
}

func (s *CockpitService) session(technician string) *technicianSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[technician]
	if !ok {
		sess = &technicianSession{
			list:   NewListCache(technician, s.tickets, s.dispatcher, s.logger),
			detail: NewDetailSession(s.aggregator, technician, s.logger),
		}
		s.sessions[technician] = sess
	}
	return sess
}

// Tickets returns the technician's paginated list, loading the first page
// when the cache is cold and refreshing it when reset is set.
func (s *CockpitService) Tickets(ctx context.Context, technician string, limit int, reset bool) (ListSnapshot, error) {
	sess := s.session(technician)
	snapshot := sess.list.Snapshot()
	if reset || snapshot.State == ListUninitialized {
		if err := sess.list.FetchPage(ctx, true, limit); err != nil {
			return sess.list.Snapshot(), err
		}
		snapshot = sess.list.Snapshot()
		s.persistSnapshots(ctx, snapshot.Incidents)
	}
	return snapshot, nil
}

// LoadMore appends the next page to the technician's list.
func (s *CockpitService) LoadMore(ctx context.Context, technician string) (ListSnapshot, error) {
	sess := s.session(technician)
	if err := sess.list.LoadMore(ctx); err != nil {
		return sess.list.Snapshot(), err
	}
	snapshot := sess.list.Snapshot()
	s.persistSnapshots(ctx, snapshot.Incidents)
	return snapshot, nil
}

// Search runs a one-shot lookup on the technician's search track.
func (s *CockpitService) Search(ctx context.Context, technician, query string, kind domain.SearchKind) (SearchSnapshot, error) {
	sess := s.session(technician)
	if err := sess.list.Search(ctx, query, kind); err != nil {
		return sess.list.SearchResults(), err
	}
	return sess.list.SearchResults(), nil
}

// TicketDetail selects the incident in the technician's detail session,
// starting a new aggregation generation, and waits for it to settle (or
// for ctx to end, returning whatever has settled by then).
func (s *CockpitService) TicketDetail(ctx context.Context, technician, number string) (domain.TicketDetailView, error) {
	sess := s.session(technician)

	snapshot, ok := sess.list.FindByNumber(number)
	if !ok {
		fetched, err := s.tickets.FetchIncidentDetails(ctx, number)
		if err != nil {
			return domain.TicketDetailView{}, err
		}
		if fetched == nil {
			return domain.TicketDetailView{}, ErrTicketNotFound
		}
		snapshot = *fetched
	}

	sess.detail.Select(snapshot)
	return sess.detail.WaitSettled(ctx), nil
}

// CurrentDetail returns the technician's current detail view without
// starting a new generation.
func (s *CockpitService) CurrentDetail(technician string) domain.TicketDetailView {
	return s.session(technician).detail.View()
}

// Close tears down every technician session and the backfill subscription.
func (s *CockpitService) Close() {
	s.dispatcher.Unsubscribe(s.sub)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.list.Close()
		sess.detail.Close()
	}
	s.sessions = make(map[string]*technicianSession)
}

// persistSnapshots mirrors fetched incidents into the local store, best
// effort.
func (s *CockpitService) persistSnapshots(ctx context.Context, incidents []domain.Incident) {
	if len(incidents) == 0 {
		return
	}
	if err := s.incidents.UpsertSnapshots(ctx, incidents); err != nil {
		s.logger.Warn("incident snapshot persistence failed", zap.Error(err))
	}
}
