package finding

import (
	"context"
	"net/url"
	"sort"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

// Backend is the slice of the CSPM client the finding engine depends on
type Backend interface {
	FilterConfigs(ctx context.Context) ([]client.RawDataTypeConfig, error)
	FilterValues(ctx context.Context, filterField, discriminator, search string, page int) (*client.FilterValuesResponse, error)
	FindingDashboard(ctx context.Context, params url.Values) (*client.DashboardResponse, error)
}

// DataTypeConfig describes which fields of one data type may be filtered,
// displayed, grouped or ordered. Immutable once resolved from the catalog.
type DataTypeConfig struct {
	DataType       string              `json:"data_type"`
	DisplayFields  map[string]string   `json:"display_fields"`
	FilterFields   map[string]string   `json:"filter_fields"`
	DefaultFilters map[string][]string `json:"default_filters"`
	GroupBy        map[string]string   `json:"group_by"`
	OrderBy        string              `json:"order_by"`
}

// InvalidFilter describes one rejected filter value
type InvalidFilter struct {
	ProvidedValue string   `json:"provided_value"`
	ValidValues   []string `json:"valid_values,omitempty"`
	Message       string   `json:"message"`
}

// DropdownResult is the live value set for one filter field
type DropdownResult struct {
	FilterField string   `json:"filter_field"`
	Count       int      `json:"count"`
	Results     []string `json:"results"`
}

// ResultKind identifies the shape of a finding query result
type ResultKind string

// Result kinds
const (
	KindCountOnly ResultKind = "count_only"
	KindGrouped   ResultKind = "grouped"
	KindDetailed  ResultKind = "detailed"
)

// QueryResult is the successful outcome of one finding query
type QueryResult struct {
	Kind    ResultKind               `json:"-"`
	Count   int                      `json:"count"`
	Page    int                      `json:"page,omitempty"`
	GroupBy string                   `json:"group_by,omitempty"`
	Results []map[string]interface{} `json:"results,omitempty"`
}

// QueryOutcome is what Execute hands back: either a result or the full
// invalid-filter map, never both. Warnings report silently unusable
// input (unknown filter or display fields) either way.
type QueryOutcome struct {
	Result   *QueryResult             `json:"result,omitempty"`
	Invalid  map[string]InvalidFilter `json:"invalid_filters,omitempty"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// QueryOptions are the caller-supplied knobs for one finding query
type QueryOptions struct {
	DataType      string
	Ordering      string
	Page          int
	PageSize      int
	Filters       map[string]string
	DisplayFields map[string]string
	GroupBy       string
	Search        string
}

// dataTypeDiscriminators maps human-readable data type names to the
// vulnerability__data_type value the backend expects.
var dataTypeDiscriminators = map[string]string{
	"Cloud Findings":           "cloud",
	"Container Image Findings": "container_image",
	"Cluster Findings":         "cluster",
	"Host Findings":            "host",
	"Web Application Findings": "web_application",
}

// Discriminator resolves the backend discriminator for a data type name
func Discriminator(dataType string) (string, bool) {
	d, ok := dataTypeDiscriminators[dataType]
	return d, ok
}

// KnownDiscriminatorDataTypes lists the data types with a backend mapping
func KnownDiscriminatorDataTypes() []string {
	names := make([]string, 0, len(dataTypeDiscriminators))
	for name := range dataTypeDiscriminators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
