package dto

import "time"

// TicketSummary is the list-row projection of an incident.
type TicketSummary struct {
	Number     string     `json:"number"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	DeviceName string     `json:"device_name,omitempty"`
	CallerName string     `json:"caller_name,omitempty"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// TicketDetail is the full incident projection.
type TicketDetail struct {
	TicketSummary
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	CallerID    string `json:"caller_id,omitempty"`
	RawPriority string `json:"raw_priority,omitempty"`
	Active      bool   `json:"active"`
}

// PageMeta mirrors the list cursor.
type PageMeta struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// TicketListResponse is the paginated list payload.
type TicketListResponse struct {
	State   string          `json:"state"`
	Tickets []TicketSummary `json:"tickets"`
	Page    PageMeta        `json:"page"`
}

// SearchResponse is the search-track payload.
type SearchResponse struct {
	State   string          `json:"state"`
	Results []TicketSummary `json:"results"`
}

// Slot is one section of the aggregated detail view: exactly one of
// loading, ready (data set), or failed (error set).
type Slot struct {
	State string `json:"state"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// TicketDetailView is the aggregated detail payload.
type TicketDetailView struct {
	Number             string `json:"number"`
	ResolvedDeviceName string `json:"resolved_device_name,omitempty"`
	Ticket             Slot   `json:"ticket"`
	Device             Slot   `json:"device"`
	Solution           Slot   `json:"solution"`
	Actions            Slot   `json:"actions"`
}

// DeviceSummary is the short owner-lookup projection.
type DeviceSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number,omitempty"`
	Owner        string `json:"owner,omitempty"`
}

// DeviceNetwork carries optional network attributes.
type DeviceNetwork struct {
	IPAddress      string `json:"ip_address,omitempty"`
	MACAddress     string `json:"mac_address,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
	VPNConnected   bool   `json:"vpn_connected"`
}

// DeviceDetail is the full device projection.
type DeviceDetail struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Owner             string         `json:"owner,omitempty"`
	OwnerDisplayName  string         `json:"owner_display_name,omitempty"`
	Manufacturer      string         `json:"manufacturer,omitempty"`
	Model             string         `json:"model,omitempty"`
	SerialNumber      string         `json:"serial_number,omitempty"`
	OperatingSystem   string         `json:"operating_system,omitempty"`
	OSVersion         string         `json:"os_version,omitempty"`
	Compliance        string         `json:"compliance"`
	Encrypted         bool           `json:"encrypted"`
	EnrolledAt        *time.Time     `json:"enrolled_at,omitempty"`
	LastSyncAt        *time.Time     `json:"last_sync_at,omitempty"`
	TotalStorageBytes int64          `json:"total_storage_bytes,omitempty"`
	FreeStorageBytes  int64          `json:"free_storage_bytes,omitempty"`
	Network           *DeviceNetwork `json:"network,omitempty"`
}

// SolutionSummary is the guidance payload.
type SolutionSummary struct {
	IncidentNumber string   `json:"incident_number"`
	Points         []string `json:"points"`
	Source         string   `json:"source"`
	ArticleCount   int      `json:"article_count"`
	Confidence     string   `json:"confidence,omitempty"`
}

// ActionRecord is one remote action.
type ActionRecord struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type,omitempty"`
	Purpose    string         `json:"purpose,omitempty"`
	Status     string         `json:"status"`
	DeviceName string         `json:"device_name,omitempty"`
	ExecutedBy string         `json:"executed_by,omitempty"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
}

// RecommendRequest asks for ranked actions for an incident.
type RecommendRequest struct {
	IncidentNumber string `json:"incident_number"`
	DeviceName     string `json:"device_name,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// ExecuteActionRequest submits a remote action execution.
type ExecuteActionRequest struct {
	ActionID   string            `json:"action_id"`
	ActionName string            `json:"action_name,omitempty"`
	DeviceName string            `json:"device_name"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// ExecuteActionResponse acknowledges a queued execution.
type ExecuteActionResponse struct {
	RunID     string `json:"run_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}
