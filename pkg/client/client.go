package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// Backend endpoints
const (
	filterConfigsEndpoint = "/api/v1/vulnerability-configs/filters-data-config"
	dashboardEndpoint     = "/api/v1/finding-dashboard"
	filterValuesEndpoint  = "/api/v1/finding-dashboard/filter-values"
	assetsEndpoint        = "/api/v1/assets"
	modelIssuesEndpoint   = "/api/v1/modelknox/dashboard/ondemand-model-issues-summary/"
	modelStatsEndpoint    = "/api/v1/modelknox/dashboard/model-stats/"
)

// Options holds client construction settings
type Options struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
	RetryMax int
}

// Client talks to the CSPM backend REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// New creates a new backend client with retrying transport
func New(opts Options, logger *logrus.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &Client{
		baseURL:    trimTrailingSlash(opts.BaseURL),
		token:      opts.APIToken,
		httpClient: retryClient.StandardClient(),
		logger:     logger,
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// RawDataTypeConfig is one per-data-type entry from the filter config catalog
type RawDataTypeConfig struct {
	DataType       string                 `json:"data_type"`
	DisplayFields  map[string]string      `json:"display_fields"`
	FilterFields   map[string]string      `json:"filter_fields"`
	DefaultFilters map[string]interface{} `json:"default_filters"`
	GroupBy        map[string]string      `json:"group_by"`
	OrderBy        string                 `json:"order_by"`
}

// DashboardResponse is the finding-dashboard query result
type DashboardResponse struct {
	Count   int                      `json:"count"`
	Results []map[string]interface{} `json:"results"`
}

// FilterValuesResponse is the dropdown value set for one filter field
type FilterValuesResponse struct {
	Count   int      `json:"count"`
	Results []string `json:"results"`
}

// AssetQuery holds filters for the asset search endpoint
type AssetQuery struct {
	AssetID             string
	TypeName            string
	TypeCategory        string
	LabelName           string
	Region              string
	CloudProvider       string
	PresentOnDateAfter  string
	PresentOnDateBefore string
	Page                int
	PageSize            int
}

// AssetPage is one page of asset search results
type AssetPage struct {
	Count   int                      `json:"count"`
	Results []map[string]interface{} `json:"results"`
}

// SeverityCount is one severity bucket in a model issue summary
type SeverityCount struct {
	Severity string `json:"vulnerability__risk_factor"`
	Count    int    `json:"count"`
}

// ModelIssuesSummary is the AI/ML model vulnerability summary
type ModelIssuesSummary struct {
	MLModelIssues  []SeverityCount `json:"ml_model_issues"`
	LLMModelIssues []SeverityCount `json:"llm_model_issues"`
	DatasetIssues  []SeverityCount `json:"dataset_issues"`
	MLTotal        int             `json:"ml_total"`
	LLMTotal       int             `json:"llm_total"`
	DatasetTotal   int             `json:"dataset_total"`
	Total          int             `json:"total"`
}

// ModelStats is the deployed/undeployed model statistics payload
type ModelStats struct {
	Data struct {
		Deployed map[string]int `json:"deployed"`
		ModeType map[string]int `json:"mode_type"`
	} `json:"data"`
}

// FilterConfigs fetches the full per-data-type filter config catalog
func (c *Client) FilterConfigs(ctx context.Context) ([]RawDataTypeConfig, error) {
	var configs []RawDataTypeConfig
	if err := c.get(ctx, filterConfigsEndpoint, nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// FindingDashboard runs one finding-dashboard query with fully composed
// parameters; parameter composition belongs to the finding engine.
func (c *Client) FindingDashboard(ctx context.Context, params url.Values) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.get(ctx, dashboardEndpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterValues fetches the live dropdown value set for one filter field.
// Only page 1 is ever requested; values are never cached locally because
// they can change between successive validations.
func (c *Client) FilterValues(ctx context.Context, filterField, discriminator, search string, page int) (*FilterValuesResponse, error) {
	params := url.Values{}
	params.Set("filter_field", filterField)
	params.Set("vulnerability__data_type", discriminator)
	params.Set("filter_search", search)
	params.Set("page", strconv.Itoa(page))

	var resp FilterValuesResponse
	if err := c.get(ctx, filterValuesEndpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Assets fetches one page of assets matching the query
func (c *Client) Assets(ctx context.Context, q AssetQuery) (*AssetPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))

	if q.AssetID != "" {
		params.Set("id", q.AssetID)
	}
	if q.TypeName != "" {
		params.Set("type_name", q.TypeName)
	}
	if q.TypeCategory != "" {
		params.Set("type_category", q.TypeCategory)
	}
	if q.LabelName != "" {
		params.Set("label_name", q.LabelName)
	}
	if q.Region != "" {
		params.Set("region", q.Region)
	}
	if q.CloudProvider != "" {
		params.Set("cloud_provider", q.CloudProvider)
	}
	if q.PresentOnDateAfter != "" && q.PresentOnDateBefore != "" {
		params.Set("present_on_date_after", q.PresentOnDateAfter)
		params.Set("present_on_date_before", q.PresentOnDateBefore)
	}

	var page AssetPage
	if err := c.get(ctx, assetsEndpoint, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ModelIssuesSummary fetches the AI/ML model vulnerability summary
func (c *Client) ModelIssuesSummary(ctx context.Context) (*ModelIssuesSummary, error) {
	params := url.Values{}
	params.Set("page", "1")

	var summary ModelIssuesSummary
	if err := c.get(ctx, modelIssuesEndpoint, params, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ModelStats fetches model deployment statistics for a last-seen window
// expressed as unix timestamps.
func (c *Client) ModelStats(ctx context.Context, lastSeenAfter, lastSeenBefore int64) (*ModelStats, error) {
	params := url.Values{}
	params.Set("last_seen_after", strconv.FormatInt(lastSeenAfter, 10))
	params.Set("last_seen_before", strconv.FormatInt(lastSeenBefore, 10))

	var stats ModelStats
	if err := c.get(ctx, modelStatsEndpoint, params, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// get performs one authenticated GET and decodes the JSON body into out
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debugf("GET %s", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}

	return nil
}
