package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
)

// gatedTicketClient delays the detail fetch for one incident number until
// released, so a test can order a slow first selection after a fast second.
type gatedTicketClient struct {
	fakeTicketClient
	gateNumber string
	gate       chan struct{}

	mu      sync.Mutex
	results map[string]domain.Incident
}

func (g *gatedTicketClient) FetchIncidentDetails(ctx context.Context, number string) (*domain.Incident, error) {
	if number == g.gateNumber {
		select {
		case <-g.gate:
		case <-time.After(2 * time.Second):
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if inc, ok := g.results[number]; ok {
		return &inc, nil
	}
	return nil, nil
}

func newSessionAggregator(tickets TicketClient) *DetailAggregator {
	logger := zap.NewNop()
	devices := &fakeDeviceClient{detail: &domain.DeviceDetail{Name: "CPC-AB123"}}
	return NewDetailAggregator(AggregatorDependencies{
		Tickets:     tickets,
		Devices:     devices,
		Resolver:    NewDeviceResolver(devices, logger),
		Solutions:   &fakeSolutions{summary: domain.SolutionSummary{Points: []string{"p"}}},
		Recommender: &fakeRecommender{actions: []domain.RemoteAction{{Name: "a"}}},
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
	})
}

func TestSessionSelectSettles(t *testing.T) {
	snapshot := domain.Incident{Number: "INC0010001", Title: "t", DeviceName: "CPC-AB123"}
	tickets := &fakeTicketClient{detail: &snapshot}

	s := NewDetailSession(newSessionAggregator(tickets), "tech1", zap.NewNop())
	defer s.Close()

	initial := s.Select(snapshot)
	assert.Equal(t, domain.SlotLoading, initial.Ticket.State)
	assert.Equal(t, "INC0010001", initial.Number)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	view := s.WaitSettled(ctx)

	require.True(t, view.Settled())
	assert.Equal(t, domain.SlotReady, view.Ticket.State)
	assert.Equal(t, domain.SlotReady, view.Device.State)
	assert.Equal(t, domain.SlotReady, view.Solution.State)
	assert.Equal(t, domain.SlotReady, view.Actions.State)
}

func TestSessionDiscardsSupersededResults(t *testing.T) {
	slow := domain.Incident{Number: "INC-SLOW", Title: "first pick", DeviceName: "CPC-AB123"}
	fast := domain.Incident{Number: "INC-FAST", Title: "second pick", DeviceName: "CPC-AB123"}

	tickets := &gatedTicketClient{
		gateNumber: "INC-SLOW",
		gate:       make(chan struct{}),
		results: map[string]domain.Incident{
			"INC-SLOW": slow,
			"INC-FAST": fast,
		},
	}

	s := NewDetailSession(newSessionAggregator(tickets), "tech1", zap.NewNop())
	defer s.Close()

	s.Select(slow)
	s.Select(fast)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	view := s.WaitSettled(ctx)
	require.True(t, view.Settled())
	assert.Equal(t, "INC-FAST", view.Number)
	assert.Equal(t, "second pick", view.Ticket.Ticket.Title)

	// Let the superseded fetch finish; its result must not overwrite the
	// current selection.
	close(tickets.gate)
	time.Sleep(50 * time.Millisecond)

	after := s.View()
	assert.Equal(t, "INC-FAST", after.Number)
	assert.Equal(t, "second pick", after.Ticket.Ticket.Title)
	assert.Equal(t, view.Generation, after.Generation)
}

func TestSessionViewBeforeSelect(t *testing.T) {
	tickets := &fakeTicketClient{}
	s := NewDetailSession(newSessionAggregator(tickets), "tech1", zap.NewNop())

	view := s.View()
	assert.Empty(t, view.Number)
	assert.False(t, view.Generation > 0)

	// WaitSettled before any selection returns immediately.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = s.WaitSettled(ctx)
}

func TestSessionCloseStopsApplies(t *testing.T) {
	snapshot := domain.Incident{Number: "INC-SLOW", DeviceName: "CPC-AB123"}
	tickets := &gatedTicketClient{
		gateNumber: "INC-SLOW",
		gate:       make(chan struct{}),
		results:    map[string]domain.Incident{"INC-SLOW": snapshot},
	}

	s := NewDetailSession(newSessionAggregator(tickets), "tech1", zap.NewNop())
	s.Select(snapshot)
	s.Close()

	close(tickets.gate)
	time.Sleep(50 * time.Millisecond)

	view := s.View()
	assert.NotEqual(t, domain.SlotReady, view.Ticket.State, "applies after close are discarded")
}
