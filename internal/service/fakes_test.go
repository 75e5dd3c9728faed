package service

import (
	"context"
	"sync"

	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/upstream"
)

// fakeTicketClient answers canned responses and records calls.
type fakeTicketClient struct {
	mu sync.Mutex

	detail    *domain.Incident
	detailErr error

	pages   []domain.IncidentPage
	pageErr error

	byUser      []domain.Incident
	byUserErr   error
	byDevice    []domain.Incident
	byDeviceErr error

	detailCalls []string
	pageCalls   []int // offsets, in call order
}

func (f *fakeTicketClient) FetchIncidentDetails(_ context.Context, number string) (*domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, number)
	return f.detail, f.detailErr
}

func (f *fakeTicketClient) FetchTechnicianPage(_ context.Context, _ string, _, offset int) (domain.IncidentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, offset)
	if f.pageErr != nil {
		return domain.IncidentPage{}, f.pageErr
	}
	idx := len(f.pageCalls) - 1
	if idx >= len(f.pages) {
		idx = len(f.pages) - 1
	}
	return f.pages[idx], nil
}

func (f *fakeTicketClient) FetchIncidentsByUser(context.Context, string, int) ([]domain.Incident, error) {
	return f.byUser, f.byUserErr
}

func (f *fakeTicketClient) FetchIncidentsByDevice(context.Context, string, int) ([]domain.Incident, error) {
	return f.byDevice, f.byDeviceErr
}

// fakeDeviceClient covers both lookup directions.
type fakeDeviceClient struct {
	mu sync.Mutex

	owned    []domain.DeviceSummary
	ownedErr error

	detail    *domain.DeviceDetail
	detailErr error

	ownerCalls []string
	nameCalls  []string
}

func (f *fakeDeviceClient) DevicesByOwner(_ context.Context, owner string) ([]domain.DeviceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ownerCalls = append(f.ownerCalls, owner)
	return f.owned, f.ownedErr
}

func (f *fakeDeviceClient) DeviceByName(_ context.Context, name string) (*domain.DeviceDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameCalls = append(f.nameCalls, name)
	return f.detail, f.detailErr
}

type fakeSolutions struct {
	mu      sync.Mutex
	summary domain.SolutionSummary
	err     error
	devices []string // device names received, in call order
}

func (f *fakeSolutions) Summarize(_ context.Context, _ domain.Incident, deviceName string, _ int) (domain.SolutionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, deviceName)
	return f.summary, f.err
}

type fakeRecommender struct {
	mu      sync.Mutex
	actions []domain.RemoteAction
	err     error
	devices []string
}

func (f *fakeRecommender) Recommend(_ context.Context, _ domain.Incident, deviceName string, _ int) ([]domain.RemoteAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, deviceName)
	return f.actions, f.err
}

type fakeActionClient struct {
	mu      sync.Mutex
	actions []domain.RemoteAction
	err     error

	execResult *upstream.ExecuteActionResult
	execErr    error

	historyCalls []string // device names
	execCalls    []upstream.ExecuteActionRequest
}

func (f *fakeActionClient) RemoteActions(_ context.Context, deviceName string, _, _ int) ([]domain.RemoteAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, deviceName)
	return f.actions, f.err
}

func (f *fakeActionClient) ExecuteAction(_ context.Context, req upstream.ExecuteActionRequest) (*upstream.ExecuteActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls = append(f.execCalls, req)
	return f.execResult, f.execErr
}

func transportErr(service string) error {
	return &upstream.Error{Service: service, Kind: upstream.KindTransport, Message: "connection refused"}
}

func upstreamErr(service, message string, status int) error {
	return &upstream.Error{Service: service, Kind: upstream.KindUpstream, StatusCode: status, Message: message}
}
