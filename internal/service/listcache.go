package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/events"
)

// ListState is the lifecycle of the paginated ticket list.
type ListState string

const (
	ListUninitialized ListState = "uninitialized"
	ListLoading       ListState = "loading"
	ListReady         ListState = "ready"
)

// SearchState is the lifecycle of the search-results track, independent
// of the paginated list.
type SearchState string

const (
	SearchIdle      SearchState = "idle"
	SearchSearching SearchState = "searching"
	SearchSearched  SearchState = "searched"
)

// ListSnapshot is a point-in-time copy of the paginated list.
type ListSnapshot struct {
	State     ListState
	Incidents []domain.Incident
	Cursor    domain.PageCursor
}

// SearchSnapshot is a point-in-time copy of the search track.
type SearchSnapshot struct {
	State   SearchState
	Results []domain.Incident
}

// ListCache holds one technician's paginated ticket list plus a separate
// one-shot search track. The two tracks never block or mutate each other.
// It subscribes to device-name-learned events so a detail re-fetch can
// backfill the list entry's device field.
type ListCache struct {
	technician string
	tickets    TicketClient
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sub        events.Subscription

	mu        sync.Mutex
	state     ListState
	loading   bool
	incidents []domain.Incident
	cursor    domain.PageCursor

	searchState SearchState
	searchHits  []domain.Incident
}

// NewListCache constructs the cache and wires the backfill subscription.
func NewListCache(technician string, tickets TicketClient, dispatcher events.Dispatcher, logger *zap.Logger) *ListCache {
	c := &ListCache{
		technician:  technician,
		tickets:     tickets,
		dispatcher:  dispatcher,
		logger:      logger,
		state:       ListUninitialized,
		searchState: SearchIdle,
	}
	c.sub = dispatcher.Subscribe(events.EventDeviceNameLearned, c.onDeviceNameLearned)
	return c
}

// Close releases the event subscription.
func (c *ListCache) Close() {
	c.dispatcher.Unsubscribe(c.sub)
}

func (c *ListCache) onDeviceNameLearned(_ context.Context, event events.Event) error {
	if event.Technician != c.technician {
		return nil
	}
	payload, ok := event.Payload.(events.DeviceNameLearnedPayload)
	if !ok {
		return nil
	}
	c.UpdateTicketDevice(payload.IncidentNumber, payload.DeviceName)
	return nil
}

// FetchPage loads one page of the technician's list. With reset it
// replaces the cached list with the page at offset 0; otherwise it appends
// the page at the current offset. A non-reset call while a fetch is in
// flight, or once no more pages exist, is a no-op; an explicit refresh is
// allowed to re-enter.
func (c *ListCache) FetchPage(ctx context.Context, reset bool, limit int) error {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	c.mu.Lock()
	if !reset && (c.loading || (c.state == ListReady && !c.cursor.HasMore)) {
		c.mu.Unlock()
		return nil
	}
	offset := 0
	if !reset {
		offset = c.cursor.Offset
	}
	prev := c.state
	c.loading = true
	c.state = ListLoading
	c.mu.Unlock()

	page, err := c.tickets.FetchTechnicianPage(ctx, c.technician, limit, offset)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.state = prev
		return err
	}

	if reset {
		c.incidents = page.Incidents
	} else {
		c.incidents = append(c.incidents, page.Incidents...)
	}
	c.cursor = domain.PageCursor{
		Limit:   limit,
		Offset:  offset + limit,
		Total:   page.Total,
		HasMore: page.HasMore,
	}
	c.state = ListReady
	return nil
}

// LoadMore appends the next page using the current cursor's limit.
func (c *ListCache) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	limit := c.cursor.Limit
	c.mu.Unlock()
	return c.FetchPage(ctx, false, limit)
}

// Search dispatches a one-shot lookup by kind and replaces the search
// track. The paginated list is never touched. An empty query clears the
// results without a call.
func (c *ListCache) Search(ctx context.Context, query string, kind domain.SearchKind) error {
	if query == "" {
		c.mu.Lock()
		c.searchHits = nil
		c.searchState = SearchIdle
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.searchState = SearchSearching
	c.mu.Unlock()

	var (
		hits []domain.Incident
		err  error
	)
	switch kind {
	case domain.SearchKindUser:
		hits, err = c.tickets.FetchIncidentsByUser(ctx, query, DefaultSearchLimit)
	case domain.SearchKindDevice:
		hits, err = c.tickets.FetchIncidentsByDevice(ctx, query, DefaultSearchLimit)
	case domain.SearchKindTicket:
		var inc *domain.Incident
		inc, err = c.tickets.FetchIncidentDetails(ctx, query)
		if err == nil && inc != nil {
			hits = []domain.Incident{*inc}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.searchState = SearchIdle
		return err
	}
	if hits == nil {
		hits = []domain.Incident{}
	}
	c.searchHits = hits
	c.searchState = SearchSearched
	return nil
}

// UpdateTicketDevice backfills the device field of the matching cached
// entry. No other field changes; no match means no-op.
func (c *ListCache) UpdateTicketDevice(number, deviceName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.incidents {
		if c.incidents[i].Number == number {
			c.incidents[i].DeviceName = deviceName
			c.logger.Debug("backfilled device name in list cache",
				zap.String("number", number), zap.String("device", deviceName))
			return
		}
	}
}

// Snapshot returns a copy of the paginated track.
func (c *ListCache) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	incidents := make([]domain.Incident, len(c.incidents))
	copy(incidents, c.incidents)
	return ListSnapshot{State: c.state, Incidents: incidents, Cursor: c.cursor}
}

// SearchResults returns a copy of the search track.
func (c *ListCache) SearchResults() SearchSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits := make([]domain.Incident, len(c.searchHits))
	copy(hits, c.searchHits)
	return SearchSnapshot{State: c.searchState, Results: hits}
}

// FindByNumber returns the cached entry for a ticket number, if present.
func (c *ListCache) FindByNumber(number string) (domain.Incident, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.incidents {
		if c.incidents[i].Number == number {
			return c.incidents[i], true
		}
	}
	return domain.Incident{}, false
}
