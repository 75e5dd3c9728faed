package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
	"github.com/spec-kit/cockpit-service/internal/repository"
)

func newCockpit(tickets TicketClient) *CockpitService {
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	devices := &fakeDeviceClient{detail: &domain.DeviceDetail{Name: "CPC-AB123"}}
	aggregator := NewDetailAggregator(AggregatorDependencies{
		Tickets:     tickets,
		Devices:     devices,
		Resolver:    NewDeviceResolver(devices, logger),
		Solutions:   &fakeSolutions{summary: domain.SolutionSummary{Points: []string{"p"}}},
		Recommender: &fakeRecommender{actions: []domain.RemoteAction{{Name: "a"}}},
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	return NewCockpitService(CockpitDependencies{
		Tickets:    tickets,
		Aggregator: aggregator,
		Dispatcher: dispatcher,
		Incidents:  repository.NewIncidentRepository(nil),
		Logger:     logger,
	})
}

func TestTicketsColdLoadThenCached(t *testing.T) {
	ctx := context.Background()
	tickets := &fakeTicketClient{
		pages: []domain.IncidentPage{{Incidents: incidentRange(1, 2), Total: 2, HasMore: false}},
	}
	s := newCockpit(tickets)
	defer s.Close()

	snap, err := s.Tickets(ctx, "tech1", 20, false)
	require.NoError(t, err)
	assert.Equal(t, ListReady, snap.State)
	assert.Len(t, snap.Incidents, 2)
	assert.Len(t, tickets.pageCalls, 1)

	// Warm cache: a second call without reset answers locally.
	snap, err = s.Tickets(ctx, "tech1", 20, false)
	require.NoError(t, err)
	assert.Len(t, snap.Incidents, 2)
	assert.Len(t, tickets.pageCalls, 1)

	// Reset forces a refresh.
	_, err = s.Tickets(ctx, "tech1", 20, true)
	require.NoError(t, err)
	assert.Len(t, tickets.pageCalls, 2)
}

func TestTicketsIsolatedPerTechnician(t *testing.T) {
	ctx := context.Background()
	tickets := &fakeTicketClient{
		pages: []domain.IncidentPage{{Incidents: incidentRange(1, 1), Total: 1, HasMore: false}},
	}
	s := newCockpit(tickets)
	defer s.Close()

	_, err := s.Tickets(ctx, "tech1", 20, false)
	require.NoError(t, err)
	_, err = s.Tickets(ctx, "tech2", 20, false)
	require.NoError(t, err)

	assert.Len(t, tickets.pageCalls, 2, "each technician owns a list cache")
}

func TestTicketDetailFromCachedSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snapshot := domain.Incident{Number: "INC0000001", Title: "cached", DeviceName: "CPC-AB123"}
	tickets := &fakeTicketClient{
		pages:  []domain.IncidentPage{{Incidents: []domain.Incident{snapshot}, Total: 1}},
		detail: &snapshot,
	}
	s := newCockpit(tickets)
	defer s.Close()

	_, err := s.Tickets(ctx, "tech1", 20, false)
	require.NoError(t, err)

	view, err := s.TicketDetail(ctx, "tech1", "INC0000001")
	require.NoError(t, err)
	assert.Equal(t, "INC0000001", view.Number)
	assert.True(t, view.Settled())
	assert.Equal(t, domain.SlotReady, view.Ticket.State)

	current := s.CurrentDetail("tech1")
	assert.Equal(t, view.Generation, current.Generation)
}

func TestTicketDetailFetchesUncachedTicket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fetched := domain.Incident{Number: "INC0009999", Title: "direct", DeviceName: "CPC-AB123"}
	tickets := &fakeTicketClient{detail: &fetched}
	s := newCockpit(tickets)
	defer s.Close()

	view, err := s.TicketDetail(ctx, "tech1", "INC0009999")
	require.NoError(t, err)
	assert.Equal(t, "INC0009999", view.Number)
}

func TestTicketDetailNotFound(t *testing.T) {
	ctx := context.Background()
	tickets := &fakeTicketClient{detail: nil}
	s := newCockpit(tickets)
	defer s.Close()

	_, err := s.TicketDetail(ctx, "tech1", "INC0000000")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestSearchDelegatesToListCache(t *testing.T) {
	ctx := context.Background()
	tickets := &fakeTicketClient{byDevice: incidentRange(1, 2)}
	s := newCockpit(tickets)
	defer s.Close()

	results, err := s.Search(ctx, "tech1", "CPC-AB123", domain.SearchKindDevice)
	require.NoError(t, err)
	assert.Equal(t, SearchSearched, results.State)
	assert.Len(t, results.Results, 2)
}
