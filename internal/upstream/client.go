package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the client-side timeout applied to every upstream call.
const DefaultTimeout = 30 * time.Second

// ErrorKind classifies upstream call failures. Transport failures (no
// response, timeout) and explicit upstream failures (non-2xx) are distinct
// and surface with different messages; "success but empty" is not an error
// at this layer.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindUpstream  ErrorKind = "upstream"
)

// Error is a failed call against an external system.
type Error struct {
	Service    string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("%s unreachable: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-level upstream failure.
func IsTransport(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == KindTransport
}

// AsUpstreamError extracts an *Error when err wraps one.
func AsUpstreamError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

func transportError(service string, err error) *Error {
	return &Error{Service: service, Kind: KindTransport, Message: err.Error(), Err: err}
}

func statusError(service string, status int, body []byte) *Error {
	msg := string(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &Error{Service: service, Kind: KindUpstream, StatusCode: status, Message: msg}
}

// CredentialProvider supplies the Authorization header value for a request.
// Token acquisition itself is a collaborator concern; the clients only
// consume the resulting credential.
type CredentialProvider interface {
	Credential(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider around a fixed bearer token.
type StaticToken string

// Credential returns the bearer header value.
func (t StaticToken) Credential(context.Context) (string, error) {
	return "Bearer " + string(t), nil
}

// BasicAuth is a CredentialProvider for username/password upstreams.
type BasicAuth struct {
	Username string
	Password string
}

// Credential returns the basic auth header value.
func (b BasicAuth) Credential(context.Context) (string, error) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(b.Username, b.Password)
	return req.Header.Get("Authorization"), nil
}

// baseClient is the shared HTTP plumbing for the system clients: base URL,
// credential injection, timeout, and the transport/upstream error split.
type baseClient struct {
	service    string
	baseURL    string
	creds      CredentialProvider
	httpClient *http.Client
}

func newBaseClient(service, baseURL string, creds CredentialProvider, timeout time.Duration) *baseClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &baseClient{
		service:    service,
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// getJSON issues a GET and decodes the 2xx body into out.
func (c *baseClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// postJSON issues a POST with a JSON body and decodes the 2xx body into out.
func (c *baseClient) postJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *baseClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, _, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return statusError(c.service, http.StatusOK, []byte("malformed response body"))
	}
	return nil
}

// do issues the request and returns the raw 2xx body and response headers.
func (c *baseClient) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		cred, err := c.creds.Credential(ctx)
		if err != nil {
			return nil, nil, transportError(c.service, fmt.Errorf("acquire credential: %w", err))
		}
		req.Header.Set("Authorization", cred)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, transportError(c.service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, transportError(c.service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, statusError(c.service, resp.StatusCode, raw)
	}
	return raw, resp.Header, nil
}
