package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

func newTestServiceNow(t *testing.T, handler http.Handler) (*ServiceNowClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewServiceNowClient(server.URL, "api-user", "secret", time.Second, zap.NewNop()), server
}

func TestSnFieldUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantValue   string
		wantDisplay string
	}{
		{"bare string", `"INC0001"`, "INC0001", ""},
		{"object", `{"value":"1","display_value":"1 - Critical"}`, "1", "1 - Critical"},
		{"numeric value", `{"value":3,"display_value":""}`, "3", ""},
		{"null value", `{"value":null,"display_value":"shown"}`, "", "shown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f snField
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &f))
			assert.Equal(t, tt.wantValue, f.Value)
			assert.Equal(t, tt.wantDisplay, f.Display)
		})
	}
}

func TestFetchIncidentDetails(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/incident", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("sysparm_query"), "number=INC0010001")
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[{
			"sys_id":{"value":"abc123","display_value":"abc123"},
			"number":{"value":"INC0010001","display_value":"INC0010001"},
			"short_description":{"value":"VPN down","display_value":"VPN down"},
			"state":{"value":"2","display_value":"In Progress"},
			"priority":{"value":"1","display_value":"1 - Critical"},
			"active":{"value":"true","display_value":"true"},
			"caller_id":{"value":"usr1","display_value":"Jane Doe"},
			"cmdb_ci.name":{"value":"CPC-AB123","display_value":"CPC-AB123"},
			"opened_at":{"value":"2025-06-01 09:30:00","display_value":"2025-06-01 09:30:00"}
		}]}`))
	}))

	inc, err := client.FetchIncidentDetails(context.Background(), "INC0010001")
	require.NoError(t, err)
	require.NotNil(t, inc)
	assert.Equal(t, "INC0010001", inc.Number)
	assert.Equal(t, "VPN down", inc.Title)
	assert.Equal(t, domain.IncidentStatusInProgress, inc.Status)
	assert.Equal(t, domain.IncidentPriorityHigh, inc.Priority)
	assert.Equal(t, "1 - Critical", inc.RawPriority)
	assert.True(t, inc.Active)
	assert.Equal(t, "usr1", inc.CallerID)
	assert.Equal(t, "Jane Doe", inc.CallerName)
	assert.Equal(t, "CPC-AB123", inc.DeviceName)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC), inc.OpenedAt)
}

func TestFetchIncidentDetailsNotFound(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))

	inc, err := client.FetchIncidentDetails(context.Background(), "INC0000000")
	require.NoError(t, err, "an empty result is not an error")
	assert.Nil(t, inc)
}

func TestFetchTechnicianPage(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/now/table/sys_user":
			w.Write([]byte(`{"result":[{"sys_id":"tech-sys-id","name":"Tech One"}]}`))
		case "/api/now/table/incident":
			q := r.URL.Query()
			assert.Contains(t, q.Get("sysparm_query"), "assigned_to=tech-sys-id")
			assert.Equal(t, "2", q.Get("sysparm_limit"))
			assert.Equal(t, "2", q.Get("sysparm_offset"))

			w.Header().Set("X-Total-Count", "5")
			w.Write([]byte(`{"result":[
				{"number":{"value":"INC3"}},
				{"number":{"value":"INC4"}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	page, err := client.FetchTechnicianPage(context.Background(), "tech1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Incidents, 2)
	assert.Equal(t, "INC3", page.Incidents[0].Number)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Offset)
	assert.True(t, page.HasMore)
}

func TestFetchTechnicianPageUnknownTechnician(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/now/table/sys_user", r.URL.Path, "no incident query for an unknown user")
		w.Write([]byte(`{"result":[]}`))
	}))

	page, err := client.FetchTechnicianPage(context.Background(), "ghost", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Incidents)
	assert.False(t, page.HasMore)
}

func TestFetchKnowledgeArticles(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/kb_knowledge", r.URL.Path)
		q := r.URL.Query().Get("sysparm_query")
		assert.Contains(t, q, "short_descriptionLIKEVPN down")
		assert.Contains(t, q, "workflow_state=published")

		w.Write([]byte(`{"result":[
			{"number":"KB001","short_description":"Reset VPN","text":"Disconnect and reconnect"}
		]}`))
	}))

	articles, err := client.FetchKnowledgeArticles(context.Background(), "VPN down", 3)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "KB001", articles[0].Number)
	assert.Equal(t, "Reset VPN", articles[0].Title)
	assert.Equal(t, "Disconnect and reconnect", articles[0].Snippet)
}

func TestUpstreamStatusError(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"insufficient rights"}}`))
	}))

	_, err := client.FetchIncidentDetails(context.Background(), "INC1")
	require.Error(t, err)
	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, KindUpstream, ue.Kind)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.False(t, IsTransport(err))
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close() // nothing listens anymore

	client := NewServiceNowClient(url, "api-user", "secret", time.Second, zap.NewNop())
	_, err := client.FetchIncidentDetails(context.Background(), "INC1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, serviceNowName, ue.Service)
}

func TestMalformedBodyIsUpstreamError(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))

	_, err := client.FetchIncidentDetails(context.Background(), "INC1")
	require.Error(t, err)
	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, KindUpstream, ue.Kind)
}

func TestPing(t *testing.T) {
	client, _ := newTestServiceNow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sys_user", r.URL.Path)
		w.Write([]byte(`{"result":[]}`))
	}))
	require.NoError(t, client.Ping(context.Background()))
}
