package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

const serviceNowName = "ServiceNow"

// incidentFields is the field list requested on every incident query.
const incidentFields = "sys_id,number,short_description,description,category,subcategory,state,priority,impact,active,assigned_to,sys_created_by,caller_id,cmdb_ci,cmdb_ci.name,opened_at,sys_updated_on"

// ServiceNowClient talks to the ticketing system's table API.
type ServiceNowClient struct {
	base   *baseClient
	logger *zap.Logger
}

// NewServiceNowClient builds a ticketing client with basic auth.
func NewServiceNowClient(instanceURL, username, password string, timeout time.Duration, logger *zap.Logger) *ServiceNowClient {
	creds := BasicAuth{Username: username, Password: password}
	return &ServiceNowClient{
		base:   newBaseClient(serviceNowName, strings.TrimRight(instanceURL, "/"), creds, timeout),
		logger: logger,
	}
}

// snField is a ServiceNow field that arrives either as a bare string or as
// a {value, display_value} object depending on sysparm_display_value. The
// raw union never leaves this package.
type snField struct {
	Value   string
	Display string
}

func (f *snField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		return nil
	}
	var obj struct {
		Value        any    `json:"value"`
		DisplayValue string `json:"display_value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Display = obj.DisplayValue
	switch v := obj.Value.(type) {
	case string:
		f.Value = v
	case float64:
		f.Value = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return nil
}

// text prefers the display value, falling back to the raw value.
func (f snField) text() string {
	if f.Display != "" {
		return f.Display
	}
	return f.Value
}

type snIncidentRecord struct {
	SysID        snField `json:"sys_id"`
	Number       snField `json:"number"`
	ShortDesc    snField `json:"short_description"`
	Description  snField `json:"description"`
	Category     snField `json:"category"`
	State        snField `json:"state"`
	Priority     snField `json:"priority"`
	Active       snField `json:"active"`
	AssignedTo   snField `json:"assigned_to"`
	CreatedBy    snField `json:"sys_created_by"`
	CallerID     snField `json:"caller_id"`
	CmdbCI       snField `json:"cmdb_ci"`
	CmdbCIName   snField `json:"cmdb_ci.name"`
	OpenedAt     snField `json:"opened_at"`
	SysUpdatedOn snField `json:"sys_updated_on"`
}

type snListResponse struct {
	Result []snIncidentRecord `json:"result"`
}

type snUserResponse struct {
	Result []struct {
		SysID snField `json:"sys_id"`
		Name  snField `json:"name"`
	} `json:"result"`
}

type snArticleResponse struct {
	Result []struct {
		Number           snField `json:"number"`
		ShortDescription snField `json:"short_description"`
		Text             snField `json:"text"`
	} `json:"result"`
}

func (r snIncidentRecord) toIncident() domain.Incident {
	rawPriority := r.Priority.text()
	deviceName := r.CmdbCIName.text()
	if deviceName == "" {
		deviceName = r.CmdbCI.Display
	}
	return domain.Incident{
		SysID:       r.SysID.text(),
		Number:      r.Number.text(),
		Title:       r.ShortDesc.text(),
		Description: r.Description.text(),
		Category:    r.Category.text(),
		Status:      domain.NormalizeStatus(r.State.text()),
		Priority:    domain.NormalizePriority(rawPriority),
		RawPriority: rawPriority,
		Active:      r.Active.Value == "true" || r.Active.Value == "1",
		AssignedTo:  r.AssignedTo.text(),
		DeviceName:  deviceName,
		CallerID:    r.CallerID.Value,
		CallerName:  r.CallerID.Display,
		OpenedAt:    domain.ParseUpstreamTime(r.OpenedAt.text()),
		UpdatedAt:   domain.ParseUpstreamTime(r.SysUpdatedOn.text()),
	}
}

// FetchUserSysID resolves a username to its sys_id. Returns "" when the
// user does not exist; errors only on transport/upstream failure.
func (c *ServiceNowClient) FetchUserSysID(ctx context.Context, username string) (string, error) {
	query := url.Values{}
	query.Set("user_name", username)
	query.Set("sysparm_fields", "sys_id,name")
	query.Set("sysparm_limit", "1")

	var resp snUserResponse
	if err := c.base.getJSON(ctx, "/api/now/table/sys_user", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Result) == 0 {
		c.logger.Debug("user not found in ticketing system", zap.String("username", username))
		return "", nil
	}
	return resp.Result[0].SysID.text(), nil
}

// FetchTechnicianPage returns one page of active incidents assigned to a
// technician, with the cursor to continue from.
func (c *ServiceNowClient) FetchTechnicianPage(ctx context.Context, technician string, limit, offset int) (domain.IncidentPage, error) {
	techSysID, err := c.FetchUserSysID(ctx, technician)
	if err != nil {
		return domain.IncidentPage{}, err
	}
	if techSysID == "" {
		return domain.IncidentPage{Limit: limit, Offset: offset}, nil
	}

	query := url.Values{}
	query.Set("sysparm_query", fmt.Sprintf("assigned_to=%s^active=true^ORDERBYDESCopened_at", techSysID))
	query.Set("sysparm_limit", strconv.Itoa(limit))
	query.Set("sysparm_offset", strconv.Itoa(offset))
	query.Set("sysparm_display_value", "all")
	query.Set("sysparm_exclude_reference_link", "true")
	query.Set("sysparm_fields", incidentFields)

	raw, headers, err := c.base.do(ctx, "GET", "/api/now/table/incident", query, nil)
	if err != nil {
		return domain.IncidentPage{}, err
	}
	var resp snListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.IncidentPage{}, statusError(serviceNowName, 200, []byte("malformed response body"))
	}

	incidents := make([]domain.Incident, 0, len(resp.Result))
	for _, rec := range resp.Result {
		incidents = append(incidents, rec.toIncident())
	}

	total := offset + len(incidents)
	if v := headers.Get("X-Total-Count"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			total = parsed
		}
	}
	return domain.IncidentPage{
		Incidents: incidents,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		HasMore:   offset+len(incidents) < total,
	}, nil
}

// FetchIncidentsByUser returns active incidents raised by the given user.
func (c *ServiceNowClient) FetchIncidentsByUser(ctx context.Context, userName string, limit int) ([]domain.Incident, error) {
	callerSysID, err := c.FetchUserSysID(ctx, userName)
	if err != nil {
		return nil, err
	}
	if callerSysID == "" {
		return []domain.Incident{}, nil
	}

	query := url.Values{}
	query.Set("sysparm_query", "caller_id="+callerSysID+"^active=true")
	query.Set("sysparm_limit", strconv.Itoa(limit))
	query.Set("sysparm_display_value", "all")
	query.Set("sysparm_exclude_reference_link", "true")
	query.Set("sysparm_fields", incidentFields)
	return c.fetchIncidentList(ctx, query)
}

// FetchIncidentsByDevice returns incidents whose configuration item matches
// the device name.
func (c *ServiceNowClient) FetchIncidentsByDevice(ctx context.Context, deviceName string, limit int) ([]domain.Incident, error) {
	query := url.Values{}
	query.Set("sysparm_query", "cmdb_ci.name="+deviceName)
	query.Set("sysparm_limit", strconv.Itoa(limit))
	query.Set("sysparm_display_value", "all")
	query.Set("sysparm_exclude_reference_link", "true")
	query.Set("sysparm_fields", incidentFields)
	return c.fetchIncidentList(ctx, query)
}

// FetchIncidentDetails returns the canonical incident for a number, or
// (nil, nil) when no such incident exists.
func (c *ServiceNowClient) FetchIncidentDetails(ctx context.Context, number string) (*domain.Incident, error) {
	query := url.Values{}
	query.Set("sysparm_query", "number="+number)
	query.Set("sysparm_display_value", "all")
	query.Set("sysparm_exclude_reference_link", "true")
	query.Set("sysparm_fields", incidentFields)
	query.Set("sysparm_limit", "1")

	incidents, err := c.fetchIncidentList(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		c.logger.Debug("incident not found", zap.String("number", number))
		return nil, nil
	}
	inc := incidents[0]
	return &inc, nil
}

// FetchKnowledgeArticles searches published knowledge articles matching
// the query text. A zero-length result is explicit-empty, not an error.
func (c *ServiceNowClient) FetchKnowledgeArticles(ctx context.Context, search string, limit int) ([]domain.KnowledgeArticle, error) {
	query := url.Values{}
	query.Set("sysparm_query", "short_descriptionLIKE"+search+"^workflow_state=published")
	query.Set("sysparm_limit", strconv.Itoa(limit))
	query.Set("sysparm_fields", "number,short_description,text")

	var resp snArticleResponse
	if err := c.base.getJSON(ctx, "/api/now/table/kb_knowledge", query, &resp); err != nil {
		return nil, err
	}
	articles := make([]domain.KnowledgeArticle, 0, len(resp.Result))
	for _, rec := range resp.Result {
		articles = append(articles, domain.KnowledgeArticle{
			Number:  rec.Number.text(),
			Title:   rec.ShortDescription.text(),
			Snippet: rec.Text.text(),
		})
	}
	return articles, nil
}

// Ping verifies connectivity and credentials with a minimal query.
func (c *ServiceNowClient) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("sysparm_limit", "1")
	query.Set("sysparm_fields", "sys_id")
	var resp snUserResponse
	return c.base.getJSON(ctx, "/api/now/table/sys_user", query, &resp)
}

func (c *ServiceNowClient) fetchIncidentList(ctx context.Context, query url.Values) ([]domain.Incident, error) {
	var resp snListResponse
	if err := c.base.getJSON(ctx, "/api/now/table/incident", query, &resp); err != nil {
		return nil, err
	}
	incidents := make([]domain.Incident, 0, len(resp.Result))
	for _, rec := range resp.Result {
		incidents = append(incidents, rec.toIncident())
	}
	return incidents, nil
}
