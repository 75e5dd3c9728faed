package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

const graphName = "DeviceManagement"

const deviceSelect = "id,deviceName,userPrincipalName,userDisplayName,operatingSystem,osVersion,complianceState,enrolledDateTime,lastSyncDateTime,manufacturer,model,serialNumber,isEncrypted,totalStorageSpaceInBytes,freeStorageSpaceInBytes,wiFiMacAddress"

// GraphClient talks to the device-management system (Microsoft Graph
// managed devices API shape).
type GraphClient struct {
	base *baseClient
}

// oauthCredential adapts an OAuth2 client-credentials token source to the
// CredentialProvider interface.
type oauthCredential struct {
	cfg *clientcredentials.Config
}

func (o *oauthCredential) Credential(ctx context.Context) (string, error) {
	token, err := o.cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", err
	}
	return "Bearer " + token.AccessToken, nil
}

// NewGraphClient builds a device-management client using the OAuth2
// client-credentials flow against the tenant's token endpoint.
func NewGraphClient(graphURL, authBaseURL, tenantID, clientID, clientSecret string, timeout time.Duration) *GraphClient {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(authBaseURL, "/"), tenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	return &GraphClient{
		base: newBaseClient(graphName, strings.TrimRight(graphURL, "/"), &oauthCredential{cfg: cfg}, timeout),
	}
}

// newGraphClientWithCreds is the injection point for tests.
func newGraphClientWithCreds(graphURL string, creds CredentialProvider, timeout time.Duration) *GraphClient {
	return &GraphClient{base: newBaseClient(graphName, strings.TrimRight(graphURL, "/"), creds, timeout)}
}

type graphDevice struct {
	ID                       string `json:"id"`
	DeviceName               string `json:"deviceName"`
	UserPrincipalName        string `json:"userPrincipalName"`
	UserDisplayName          string `json:"userDisplayName"`
	OperatingSystem          string `json:"operatingSystem"`
	OSVersion                string `json:"osVersion"`
	ComplianceState          string `json:"complianceState"`
	EnrolledDateTime         string `json:"enrolledDateTime"`
	LastSyncDateTime         string `json:"lastSyncDateTime"`
	Manufacturer             string `json:"manufacturer"`
	Model                    string `json:"model"`
	SerialNumber             string `json:"serialNumber"`
	IsEncrypted              bool   `json:"isEncrypted"`
	TotalStorageSpaceInBytes int64  `json:"totalStorageSpaceInBytes"`
	FreeStorageSpaceInBytes  int64  `json:"freeStorageSpaceInBytes"`
	WiFiMacAddress           string `json:"wiFiMacAddress"`
}

type graphDeviceList struct {
	Value []graphDevice `json:"value"`
}

func (d graphDevice) toDetail() domain.DeviceDetail {
	detail := domain.DeviceDetail{
		ID:                d.ID,
		Name:              d.DeviceName,
		Owner:             d.UserPrincipalName,
		OwnerDisplayName:  d.UserDisplayName,
		Manufacturer:      d.Manufacturer,
		Model:             d.Model,
		SerialNumber:      d.SerialNumber,
		OperatingSystem:   d.OperatingSystem,
		OSVersion:         d.OSVersion,
		Compliance:        domain.NormalizeCompliance(d.ComplianceState),
		Encrypted:         d.IsEncrypted,
		EnrolledAt:        domain.ParseUpstreamTime(d.EnrolledDateTime),
		LastSyncAt:        domain.ParseUpstreamTime(d.LastSyncDateTime),
		TotalStorageBytes: d.TotalStorageSpaceInBytes,
		FreeStorageBytes:  d.FreeStorageSpaceInBytes,
	}
	if d.WiFiMacAddress != "" {
		detail.Network = &domain.DeviceNetwork{
			MACAddress:     d.WiFiMacAddress,
			ConnectionType: "wifi",
		}
	}
	return detail
}

// DevicesByOwner lists managed devices enrolled by the given owner (UPN),
// preserving upstream order. An empty list is an explicit-empty result,
// not an error.
func (c *GraphClient) DevicesByOwner(ctx context.Context, ownerUPN string) ([]domain.DeviceSummary, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("userPrincipalName eq '%s'", ownerUPN))
	query.Set("$select", "id,deviceName,serialNumber,userPrincipalName")

	var resp graphDeviceList
	if err := c.base.getJSON(ctx, "/deviceManagement/managedDevices", query, &resp); err != nil {
		return nil, err
	}
	devices := make([]domain.DeviceSummary, 0, len(resp.Value))
	for _, d := range resp.Value {
		devices = append(devices, domain.DeviceSummary{
			ID:           d.ID,
			Name:         d.DeviceName,
			SerialNumber: d.SerialNumber,
			Owner:        d.UserPrincipalName,
		})
	}
	return devices, nil
}

// DeviceByName fetches the device detail record for a device name. Returns
// (nil, nil) when the device-management system has no matching device.
func (c *GraphClient) DeviceByName(ctx context.Context, deviceName string) (*domain.DeviceDetail, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("deviceName eq '%s'", deviceName))
	query.Set("$select", deviceSelect)

	var resp graphDeviceList
	if err := c.base.getJSON(ctx, "/deviceManagement/managedDevices", query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, nil
	}
	detail := resp.Value[0].toDetail()
	return &detail, nil
}

// Ping verifies token acquisition and API reachability.
func (c *GraphClient) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("$top", "1")
	query.Set("$select", "id")
	var resp graphDeviceList
	return c.base.getJSON(ctx, "/deviceManagement/managedDevices", query, &resp)
}
