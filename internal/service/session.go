package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

// DetailSession owns "the currently displayed ticket" for one technician
// and guards slot applies with a generation token. Each Select begins a
// new generation; patches produced by an older generation compare stale
// at apply time and are discarded without touching state. The previous
// generation's context is cancelled, but the guarantee does not depend on
// transport-level abort: logical discard alone keeps generations apart.
type DetailSession struct {
	aggregator *DetailAggregator
	technician string
	logger     *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	view       domain.TicketDetailView
	settled    chan struct{}
}

// NewDetailSession constructs a session for one technician.
func NewDetailSession(aggregator *DetailAggregator, technician string, logger *zap.Logger) *DetailSession {
	return &DetailSession{
		aggregator: aggregator,
		technician: technician,
		logger:     logger,
	}
}

// Select begins a new generation for the given incident snapshot and
// starts its aggregation. It returns the initial view with every slot
// loading; callers observe settlement through View or WaitSettled.
func (s *DetailSession) Select(snapshot domain.Incident) domain.TicketDetailView {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.view = domain.NewTicketDetailView(gen, snapshot)
	s.settled = make(chan struct{})
	settled := s.settled
	initial := s.view
	s.mu.Unlock()

	apply := func(patch slotPatch) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			// Late result from a superseded selection.
			return
		}
		patch(&s.view)
		if s.view.Settled() {
			select {
			case <-settled:
			default:
				close(settled)
			}
		}
	}

	s.aggregator.Load(ctx, snapshot, s.technician, apply)
	return initial
}

// View returns the current view-model.
func (s *DetailSession) View() domain.TicketDetailView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// WaitSettled blocks until the current generation settles or ctx ends,
// then returns the latest view either way.
func (s *DetailSession) WaitSettled(ctx context.Context) domain.TicketDetailView {
	s.mu.Lock()
	settled := s.settled
	s.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
		}
	}
	return s.View()
}

// Close cancels any in-flight aggregation and bumps the generation so
// stragglers are discarded.
func (s *DetailSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
