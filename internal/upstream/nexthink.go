package upstream

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

const nexthinkName = "Nexthink"

// NQL query ids provisioned on the diagnostics tenant.
const (
	nqlRemoteActionsDetailed = "#cockpit_remote_actions_executed_with_details"
	nqlRemoteActionsBasic    = "#cockpit_remote_actions_executed_on_device"
)

// NexthinkClient talks to the diagnostics/endpoint-analytics system.
type NexthinkClient struct {
	base *baseClient
}

// NewNexthinkClient builds a diagnostics client. Tokens come from the
// tenant's OAuth2 client-credentials endpoint.
func NewNexthinkClient(apiURL, authURL, clientID, clientSecret string, timeout time.Duration) *NexthinkClient {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimRight(authURL, "/") + "/oauth2/default/v1/token",
	}
	return &NexthinkClient{
		base: newBaseClient(nexthinkName, strings.TrimRight(apiURL, "/"), &oauthCredential{cfg: cfg}, timeout),
	}
}

func newNexthinkClientWithCreds(apiURL string, creds CredentialProvider, timeout time.Duration) *NexthinkClient {
	return &NexthinkClient{base: newBaseClient(nexthinkName, strings.TrimRight(apiURL, "/"), creds, timeout)}
}

type nqlRequest struct {
	QueryID    string            `json:"queryId"`
	Parameters map[string]string `json:"parameters"`
}

type nqlResponse struct {
	Rows []map[string]any `json:"data"`
}

// ExecuteActionRequest asks the diagnostics system to run a remote action.
type ExecuteActionRequest struct {
	ActionID   string            `json:"remoteActionId"`
	DeviceName string            `json:"deviceName"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// ExecuteActionResult is the acknowledgement for a queued execution.
type ExecuteActionResult struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func rowString(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowToAction(row map[string]any) domain.RemoteAction {
	rawStatus := rowString(row, "remote_action.execution.status")
	return domain.RemoteAction{
		ID:         rowString(row, "remote_action.execution.request_id"),
		Name:       rowString(row, "remote_action.name"),
		Type:       rowString(row, "remote_action.source"),
		Purpose:    rowString(row, "remote_action.execution.purpose"),
		Status:     domain.NormalizeActionStatus(rawStatus),
		RawStatus:  rawStatus,
		DeviceName: rowString(row, "device.name"),
		ExecutedBy: rowString(row, "remote_action.execution.trigger_method"),
		CreatedAt:  domain.ParseUpstreamTime(rowString(row, "remote_action.execution.request_time")),
		UpdatedAt:  domain.ParseUpstreamTime(rowString(row, "remote_action.execution.time")),
		Result: map[string]any{
			"inputs":         row["remote_action.execution.inputs"],
			"outputs":        row["remote_action.execution.outputs"],
			"status_details": row["remote_action.execution.status_details"],
		},
	}
}

// RemoteActions returns remote actions executed on a device, most recent
// first, optionally bounded to the last `days` days and `limit` entries.
// A zero-length result is explicit-empty, not an error.
func (c *NexthinkClient) RemoteActions(ctx context.Context, deviceName string, days, limit int) ([]domain.RemoteAction, error) {
	payload := nqlRequest{
		QueryID:    nqlRemoteActionsDetailed,
		Parameters: map[string]string{"device_name": deviceName},
	}
	var resp nqlResponse
	if err := c.base.postJSON(ctx, "/api/v1/nql/execute", payload, &resp); err != nil {
		return nil, err
	}

	actions := make([]domain.RemoteAction, 0, len(resp.Rows))
	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}
	for _, row := range resp.Rows {
		action := rowToAction(row)
		if !cutoff.IsZero() && !action.UpdatedAt.IsZero() && action.UpdatedAt.Before(cutoff) {
			continue
		}
		actions = append(actions, action)
	}

	// Most recent first; unparseable timestamps sort last.
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].UpdatedAt.After(actions[j].UpdatedAt)
	})
	if limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}
	return actions, nil
}

// ExecuteAction queues a remote action execution on a device.
func (c *NexthinkClient) ExecuteAction(ctx context.Context, req ExecuteActionRequest) (*ExecuteActionResult, error) {
	var result ExecuteActionResult
	if err := c.base.postJSON(ctx, "/api/v1/acts/execute", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping verifies token acquisition and API reachability with a minimal query.
func (c *NexthinkClient) Ping(ctx context.Context) error {
	payload := nqlRequest{QueryID: nqlRemoteActionsBasic, Parameters: map[string]string{"device_name": ""}}
	var resp nqlResponse
	return c.base.postJSON(ctx, "/api/v1/nql/execute", payload, &resp)
}
