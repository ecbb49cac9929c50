package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// MockUpstream simulates the CSPM backend REST API for tests. It serves
// the filter config catalog, dropdown values, finding dashboard, asset
// search and model statistics endpoints with canned data that tests can
// adjust per scenario.
type MockUpstream struct {
	server *httptest.Server

	mu               sync.Mutex
	token            string
	catalog          []map[string]interface{}
	filterValues     map[string][]string
	dashboardCount   int
	dashboardResults []map[string]interface{}
	assetCount       int
	assetResults     []map[string]interface{}

	configCalls    int
	dashboardCalls int
	valueCalls     int
	lastDashboard  map[string]string
}

// NewMockUpstream creates and starts a mock backend with a default
// single-data-type catalog.
func NewMockUpstream() *MockUpstream {
	m := &MockUpstream{
		token: "mock-token",
		catalog: []map[string]interface{}{
			{
				"data_type": "Cloud Findings",
				"display_fields": map[string]string{
					"finding_name":   "Finding Name",
					"risk_factor":    "Severity",
					"cloud_provider": "Cloud Provider",
				},
				"filter_fields": map[string]string{
					"risk_factor":     "Finding severity",
					"cloud_provider":  "Cloud provider",
					"present_on_date": "Date the finding was present",
				},
				"default_filters": map[string]interface{}{
					"status": "active",
				},
				"group_by": map[string]string{
					"risk_factor": "Group by severity",
				},
				"order_by": "last_seen",
			},
		},
		filterValues: map[string][]string{
			"risk_factor":    {"Critical", "High", "Medium", "Low"},
			"cloud_provider": {"aws", "azure", "gcp"},
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/vulnerability-configs/filters-data-config", m.handleFilterConfigs).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/finding-dashboard", m.handleDashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/finding-dashboard/filter-values", m.handleFilterValues).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/assets", m.handleAssets).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/modelknox/dashboard/ondemand-model-issues-summary/", m.handleModelIssues).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/modelknox/dashboard/model-stats/", m.handleModelStats).Methods(http.MethodGet)

	m.server = httptest.NewServer(router)
	return m
}

// URL returns the mock backend's base URL
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Token returns the bearer token the mock expects
func (m *MockUpstream) Token() string {
	return m.token
}

// Close shuts the mock backend down
func (m *MockUpstream) Close() {
	m.server.Close()
}

// SetFilterValues replaces the dropdown value set for a filter field
func (m *MockUpstream) SetFilterValues(field string, values []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filterValues[field] = values
}

// SetDashboard replaces the canned finding dashboard response
func (m *MockUpstream) SetDashboard(count int, results []map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboardCount = count
	m.dashboardResults = results
}

// SetAssets replaces the canned asset search response
func (m *MockUpstream) SetAssets(count int, results []map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assetCount = count
	m.assetResults = results
}

// FilterConfigCalls reports how many times the catalog was fetched
func (m *MockUpstream) FilterConfigCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configCalls
}

// DashboardCalls reports how many finding queries were made
func (m *MockUpstream) DashboardCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dashboardCalls
}

// LastDashboardParams returns the query parameters of the most recent
// finding dashboard request.
func (m *MockUpstream) LastDashboardParams() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDashboard
}

func (m *MockUpstream) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+m.token
}

func (m *MockUpstream) handleFilterConfigs(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	m.configCalls++
	catalog := m.catalog
	m.mu.Unlock()

	writeJSON(w, catalog)
}

func (m *MockUpstream) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		params[key] = strings.Join(values, ",")
	}

	m.mu.Lock()
	m.dashboardCalls++
	m.lastDashboard = params
	count := m.dashboardCount
	results := m.dashboardResults
	m.mu.Unlock()

	writeJSON(w, map[string]interface{}{"count": count, "results": results})
}

func (m *MockUpstream) handleFilterValues(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	field := r.URL.Query().Get("filter_field")

	m.mu.Lock()
	m.valueCalls++
	values := m.filterValues[field]
	m.mu.Unlock()

	writeJSON(w, map[string]interface{}{"count": len(values), "results": values})
}

func (m *MockUpstream) handleAssets(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	count := m.assetCount
	results := m.assetResults
	m.mu.Unlock()

	writeJSON(w, map[string]interface{}{"count": count, "results": results})
}

func (m *MockUpstream) handleModelIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"ml_model_issues":  []map[string]interface{}{{"vulnerability__risk_factor": "Critical", "count": 2}},
		"llm_model_issues": []map[string]interface{}{{"vulnerability__risk_factor": "High", "count": 1}},
		"dataset_issues":   []map[string]interface{}{},
		"ml_total":         2,
		"llm_total":        1,
		"dataset_total":    0,
		"total":            3,
	})
}

func (m *MockUpstream) handleModelStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"deployed":  map[string]int{"true": 4, "false": 1},
			"mode_type": map[string]int{"LLM": 3},
		},
	})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
