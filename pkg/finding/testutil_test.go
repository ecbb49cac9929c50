package finding

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

// fakeBackend implements Backend for engine tests
type fakeBackend struct {
	mu sync.Mutex

	configs     []client.RawDataTypeConfig
	configCalls int
	configErr   error

	values      map[string][]string
	valueErrs   map[string]error
	valueDelays map[string]time.Duration
	valueCalls  int

	dashboard      *client.DashboardResponse
	dashboardErr   error
	dashboardCalls int
	lastParams     url.Values
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		configs:     sampleCatalog(),
		values:      make(map[string][]string),
		valueErrs:   make(map[string]error),
		valueDelays: make(map[string]time.Duration),
		dashboard:   &client.DashboardResponse{},
	}
}

func (f *fakeBackend) FilterConfigs(ctx context.Context) ([]client.RawDataTypeConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configCalls++
	if f.configErr != nil {
		return nil, f.configErr
	}
	return f.configs, nil
}

func (f *fakeBackend) FilterValues(ctx context.Context, filterField, discriminator, search string, page int) (*client.FilterValuesResponse, error) {
	f.mu.Lock()
	delay := f.valueDelays[filterField]
	err := f.valueErrs[filterField]
	values := f.values[filterField]
	f.valueCalls++
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &client.FilterValuesResponse{Count: len(values), Results: values}, nil
}

func (f *fakeBackend) FindingDashboard(ctx context.Context, params url.Values) (*client.DashboardResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashboardCalls++
	f.lastParams = params
	if f.dashboardErr != nil {
		return nil, f.dashboardErr
	}
	return f.dashboard, nil
}

// sampleCatalog is a small but representative filter config catalog
func sampleCatalog() []client.RawDataTypeConfig {
	return []client.RawDataTypeConfig{
		{
			DataType: "Cloud Findings",
			DisplayFields: map[string]string{
				"finding_name":   "Finding Name",
				"risk_factor":    "Severity",
				"cloud_provider": "Cloud Provider",
				"region":         "Region",
			},
			FilterFields: map[string]string{
				"risk_factor":     "Finding severity",
				"cloud_provider":  "Cloud provider",
				"status":          "Finding status",
				"present_on_date": "Date the finding was present",
				"last_seen":       "Date the finding was last seen",
			},
			DefaultFilters: map[string]interface{}{
				"status":      "active",
				"risk_factor": []interface{}{"Critical", "High"},
			},
			GroupBy: map[string]string{
				"risk_factor":    "Group by severity",
				"cloud_provider": "Group by provider",
			},
			OrderBy: "last_seen",
		},
		{
			DataType: "Container Image Findings",
			DisplayFields: map[string]string{
				"finding_name": "Finding Name",
				"image":        "Image",
			},
			FilterFields: map[string]string{
				"registry":        "Image registry",
				"date_discovered": "Date the finding was discovered",
			},
			DefaultFilters: map[string]interface{}{},
			GroupBy:        map[string]string{"registry": "Group by registry"},
			OrderBy:        "date_discovered",
		},
	}
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
