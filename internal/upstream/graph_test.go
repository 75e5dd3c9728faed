package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

func newTestGraph(t *testing.T, handler http.Handler) *GraphClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newGraphClientWithCreds(server.URL, StaticToken("test-token"), time.Second)
}

func TestDevicesByOwnerPreservesOrder(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deviceManagement/managedDevices", r.URL.Path)
		assert.Equal(t, "userPrincipalName eq 'jdoe@corp.example'", r.URL.Query().Get("$filter"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Write([]byte(`{"value":[
			{"id":"d2","deviceName":"CPC-SECOND","serialNumber":"S2","userPrincipalName":"jdoe@corp.example"},
			{"id":"d1","deviceName":"CPC-FIRST","serialNumber":"S1","userPrincipalName":"jdoe@corp.example"}
		]}`))
	}))

	devices, err := client.DevicesByOwner(context.Background(), "jdoe@corp.example")
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "CPC-SECOND", devices[0].Name, "upstream order is preserved")
	assert.Equal(t, "CPC-FIRST", devices[1].Name)
}

func TestDevicesByOwnerEmpty(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	}))

	devices, err := client.DevicesByOwner(context.Background(), "nobody@corp.example")
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestDeviceByName(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "deviceName eq 'CPC-AB123'", r.URL.Query().Get("$filter"))

		w.Write([]byte(`{"value":[{
			"id":"d1",
			"deviceName":"CPC-AB123",
			"userPrincipalName":"jdoe@corp.example",
			"userDisplayName":"Jane Doe",
			"operatingSystem":"Windows",
			"osVersion":"10.0.22631",
			"complianceState":"noncompliant",
			"enrolledDateTime":"2024-01-15T08:00:00Z",
			"lastSyncDateTime":"2025-06-01T07:45:00Z",
			"manufacturer":"Lenovo",
			"model":"T14",
			"serialNumber":"SN123",
			"isEncrypted":true,
			"totalStorageSpaceInBytes":512000000000,
			"freeStorageSpaceInBytes":128000000000,
			"wiFiMacAddress":"AA:BB:CC:DD:EE:FF"
		}]}`))
	}))

	detail, err := client.DeviceByName(context.Background(), "CPC-AB123")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "CPC-AB123", detail.Name)
	assert.Equal(t, "Jane Doe", detail.OwnerDisplayName)
	assert.Equal(t, domain.ComplianceStateNonCompliant, detail.Compliance)
	assert.True(t, detail.Encrypted)
	assert.Equal(t, int64(512000000000), detail.TotalStorageBytes)
	require.NotNil(t, detail.Network)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", detail.Network.MACAddress)
	assert.Equal(t, "wifi", detail.Network.ConnectionType)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), detail.EnrolledAt)
}

func TestDeviceByNameNotFound(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	}))

	detail, err := client.DeviceByName(context.Background(), "GHOST-1")
	require.NoError(t, err, "no matching device is not an error")
	assert.Nil(t, detail)
}

func TestDeviceByNameNoNetworkBlock(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value":[{"id":"d1","deviceName":"CPC-AB123"}]}`))
	}))

	detail, err := client.DeviceByName(context.Background(), "CPC-AB123")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Nil(t, detail.Network, "no MAC means no network block")
	assert.Equal(t, domain.ComplianceStateUnknown, detail.Compliance)
}

func TestGraphUpstreamError(t *testing.T) {
	client := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"InvalidAuthenticationToken"}}`))
	}))

	_, err := client.DevicesByOwner(context.Background(), "jdoe@corp.example")
	require.Error(t, err)
	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, graphName, ue.Service)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
}
