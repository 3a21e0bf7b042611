package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// Catalog answers hub queries.
type Catalog interface {
	// HubStatus returns the hubs registered by username.
	HubStatus(ctx context.Context, username string) ([]HubDescriptor, error)

	// Charts returns the charts published by one hub.
	Charts(ctx context.Context, req ChartsRequest) ([]Chart, error)
}

const hubStatusQuery = `query getHubStatus($data: String!) {
  getHubStatus(username: $data) {
    id
    HubName
    RepoURL
    RepoBranch
    IsAvailable
    TotalExp
  }
}`

const chartsQuery = `query getCharts($data: ChartsInput!) {
  getCharts(HubDetails: $data) {
    ApiVersion
    Kind
    Metadata {
      Name
      Version
    }
    Spec {
      DisplayName
      CategoryDescription
      Experiments
    }
  }
}`

// Client queries the chaos portal's GraphQL endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for the portal at baseURL. Queries are posted
// to baseURL + "/query".
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/query",
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets the HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// HubStatus fetches the user's registered hubs.
func (c *Client) HubStatus(ctx context.Context, username string) ([]HubDescriptor, error) {
	var out struct {
		GetHubStatus []HubDescriptor `json:"getHubStatus"`
	}
	if err := c.exec(ctx, hubStatusQuery, username, &out); err != nil {
		return nil, &cferrors.HubError{Op: "status", Err: err}
	}
	return out.GetHubStatus, nil
}

// Charts fetches one hub's charts.
func (c *Client) Charts(ctx context.Context, req ChartsRequest) ([]Chart, error) {
	var out struct {
		GetCharts []Chart `json:"getCharts"`
	}
	if err := c.exec(ctx, chartsQuery, req, &out); err != nil {
		return nil, &cferrors.HubError{Op: "charts", Hub: req.HubName, Err: err}
	}
	return out.GetCharts, nil
}

// exec runs query with a single "data" variable and decodes the data field
// into out.
func (c *Client) exec(ctx context.Context, query string, data any, out any) error {
	doer := &portalDoer{client: c.httpClient, token: c.token}
	raw, err := graphql.NewClient(c.endpoint, doer).
		ExecRaw(ctx, query, map[string]any{"data": data})
	if doer.err != nil {
		return doer.err
	}
	if err != nil {
		return fmt.Errorf("portal error: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: empty data", cferrors.ErrNotFound)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// portalDoer authenticates requests and turns transport failures and non-200
// replies into ErrNetwork. The first such failure is kept in err.
type portalDoer struct {
	client *http.Client
	token  string
	err    error
}

func (d *portalDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "chaosflow")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.err = fmt.Errorf("%w: %v", cferrors.ErrNetwork, err)
		return nil, d.err
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		d.err = fmt.Errorf("%w: portal returned status %d: %s", cferrors.ErrNetwork, resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, d.err
	}
	return resp, nil
}
