package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

func TestRecommendNoDeviceNoCall(t *testing.T) {
	actions := &fakeActionClient{}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{Number: "INC1", Title: "something broke", Description: "no hostname here"}
	got, err := r.Recommend(context.Background(), incident, "", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, actions.historyCalls, "no history fetch without a device")
}

func TestRecommendExtractsDeviceFromDescription(t *testing.T) {
	actions := &fakeActionClient{
		actions: []domain.RemoteAction{
			{Name: "Run Hardware Diagnostic", Purpose: "remediation", Status: domain.ActionStatusSuccess},
		},
	}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{
		Number:      "INC2",
		Category:    "hardware",
		Title:       "Fan noise",
		Description: "User reports loud fan on CPC-AB123 since Monday",
	}
	got, err := r.Recommend(context.Background(), incident, domain.DeviceNameSentinel, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"CPC-AB123"}, actions.historyCalls)
}

func TestRecommendRanksByScoreDescending(t *testing.T) {
	actions := &fakeActionClient{
		actions: []domain.RemoteAction{
			// hardware match 40 + data_collection 10 + success 15 = 65
			{Name: "Disk Health Check", Purpose: "data_collection", Status: domain.ActionStatusSuccess},
			// hardware match 40 + remediation 20 + success 15 = 75
			{Name: "Memory Diagnostic Fix", Purpose: "remediation", Status: domain.ActionStatusSuccess},
			// no category match, no purpose, failure 5 = 5
			{Name: "Reset Password", Status: domain.ActionStatusFailure},
		},
	}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{Number: "INC3", Category: "hardware", DeviceName: "WS-42", Title: "Crashes"}
	got, err := r.Recommend(context.Background(), incident, "WS-42", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Memory Diagnostic Fix", got[0].Name)
	assert.Equal(t, "Disk Health Check", got[1].Name)
	assert.Equal(t, "Reset Password", got[2].Name)
}

func TestRecommendDeduplicatesKeepingHigherScore(t *testing.T) {
	actions := &fakeActionClient{
		actions: []domain.RemoteAction{
			{ID: "run-1", Name: "Network Diagnostic", Status: domain.ActionStatusFailure},
			{ID: "run-2", Name: "Network Diagnostic", Purpose: "remediation", Status: domain.ActionStatusSuccess},
		},
	}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{Number: "INC4", Category: "network", Title: "No connection"}
	got, err := r.Recommend(context.Background(), incident, "WS-42", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-2", got[0].ID, "the better-scoring duplicate wins")
}

func TestRecommendCapsAtLimit(t *testing.T) {
	actions := &fakeActionClient{
		actions: []domain.RemoteAction{
			{Name: "Network Check A", Status: domain.ActionStatusSuccess},
			{Name: "Network Check B", Status: domain.ActionStatusSuccess},
			{Name: "Network Check C", Status: domain.ActionStatusSuccess},
			{Name: "Network Check D", Status: domain.ActionStatusSuccess},
		},
	}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{Number: "INC5", Category: "network", Title: "Outage"}
	got, err := r.Recommend(context.Background(), incident, "WS-42", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecommendHistoryErrorPropagates(t *testing.T) {
	actions := &fakeActionClient{err: transportErr("nexthink")}
	r := NewRecommender(actions, zap.NewNop())

	incident := domain.Incident{Number: "INC6", Title: "Broken LAPTOP-X1"}
	_, err := r.Recommend(context.Background(), incident, "", 3)
	require.Error(t, err)
}

func TestScoreActionCap(t *testing.T) {
	action := domain.RemoteAction{
		Name:    "printer print network hardware health diagnostic disk memory",
		Purpose: "remediation",
		Status:  domain.ActionStatusSuccess,
	}
	score := scoreAction(action, "hardware", "printer keeps jamming with noisy hardware diagnostic memory errors")
	assert.LessOrEqual(t, score, 100.0)
	assert.Greater(t, score, 0.0)
}
