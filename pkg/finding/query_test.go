package finding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

func TestExecuteCountOnly(t *testing.T) {
	backend := newFakeBackend()
	backend.dashboard = &client.DashboardResponse{
		Count: 42,
		Results: []map[string]interface{}{
			{"finding_name": "open bucket"},
		},
	}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{DataType: "Cloud Findings"})
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	assert.Equal(t, KindCountOnly, outcome.Result.Kind)
	assert.Equal(t, 42, outcome.Result.Count)
	assert.Empty(t, outcome.Result.Results, "count-only must not carry rows")
}

func TestExecuteFixedParams(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{DataType: "Cloud Findings"})
	require.NoError(t, err)

	params := backend.lastParams
	assert.Equal(t, "1", params.Get("page"))
	assert.Equal(t, "10", params.Get("page_size"))
	assert.Equal(t, "3", params.Get("depth"))
	assert.Equal(t, "cloud", params.Get("vulnerability__data_type"))
	assert.Equal(t, "-last_seen", params.Get("ordering"))
}

func TestExecuteOrderingCoercedDescending(t *testing.T) {
	tests := []struct {
		name     string
		ordering string
		want     string
	}{
		{"bare field gets descending prefix", "risk_factor", "-risk_factor"},
		{"already descending untouched", "-risk_factor", "-risk_factor"},
		{"empty falls back to config default", "", "-last_seen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			engine := NewEngine(backend, newTestLogger())

			_, err := engine.Execute(context.Background(), QueryOptions{
				DataType: "Cloud Findings",
				Ordering: tt.ordering,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, backend.lastParams.Get("ordering"))
		})
	}
}

func TestExecuteDefaultFiltersJoined(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{DataType: "Cloud Findings"})
	require.NoError(t, err)

	assert.Equal(t, "active", backend.lastParams.Get("status"))
	assert.Equal(t, "Critical|High", backend.lastParams.Get("risk_factor"))
}

func TestExecuteValidatedFilterOverridesDefault(t *testing.T) {
	backend := newFakeBackend()
	backend.values["risk_factor"] = []string{"Critical", "High", "Medium", "Low"}
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		Filters:  map[string]string{"risk_factor": "Low"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Low", backend.lastParams.Get("risk_factor"), "caller filter wins over default")
	assert.Equal(t, "active", backend.lastParams.Get("status"), "untouched defaults still apply")
}

func TestExecuteInvalidFilterShortCircuits(t *testing.T) {
	backend := newFakeBackend()
	backend.values["cloud_provider"] = []string{"aws", "azure", "gcp"}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		Filters:  map[string]string{"cloud_provider": "ibm"},
	})
	require.NoError(t, err)

	assert.Nil(t, outcome.Result)
	require.Contains(t, outcome.Invalid, "cloud_provider")
	assert.Equal(t, []string{"aws", "azure", "gcp"}, outcome.Invalid["cloud_provider"].ValidValues)
	assert.Equal(t, 0, backend.dashboardCalls, "dashboard must not be queried on invalid input")
}

func TestExecuteGrouped(t *testing.T) {
	backend := newFakeBackend()
	backend.dashboard = &client.DashboardResponse{
		Count: 2,
		Results: []map[string]interface{}{
			{"risk_factor": "Critical", "total": float64(17)},
			{"risk_factor": "High", "total": float64(9)},
		},
	}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		GroupBy:  "risk_factor",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	assert.Equal(t, KindGrouped, outcome.Result.Kind)
	assert.Equal(t, "risk_factor", outcome.Result.GroupBy)
	assert.Len(t, outcome.Result.Results, 2)
	assert.Equal(t, "Critical", outcome.Result.Results[0]["risk_factor"])

	assert.Equal(t, "risk_factor", backend.lastParams.Get("group_by"))
	assert.Equal(t, "-total", backend.lastParams.Get("group_by_order"))
}

func TestExecuteUnknownGroupByWarns(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		GroupBy:  "nonsense",
	})
	require.NoError(t, err)

	require.NotEmpty(t, outcome.Warnings)
	assert.Contains(t, outcome.Warnings[0], "nonsense")
	assert.Equal(t, "nonsense", backend.lastParams.Get("group_by"))
}

func TestExecuteDetailedShapesRows(t *testing.T) {
	backend := newFakeBackend()
	backend.dashboard = &client.DashboardResponse{
		Count: 1,
		Results: []map[string]interface{}{
			{
				"finding_name": "open bucket",
				"risk_factor":  "Critical",
				"region":       "us-east-1",
				"internal_id":  "abc123",
			},
		},
	}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		DisplayFields: map[string]string{
			"finding_name": "Finding Name",
			"risk_factor":  "Severity",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	assert.Equal(t, KindDetailed, outcome.Result.Kind)
	assert.Equal(t, 1, outcome.Result.Page)
	require.Len(t, outcome.Result.Results, 1)

	row := outcome.Result.Results[0]
	assert.Equal(t, "open bucket", row["Finding Name"])
	assert.Equal(t, "Critical", row["Severity"])
	assert.NotContains(t, row, "region")
	assert.NotContains(t, row, "internal_id")
}

func TestExecuteUnknownDisplayFieldDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.dashboard = &client.DashboardResponse{
		Count:   1,
		Results: []map[string]interface{}{{"finding_name": "x", "secret": "y"}},
	}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		DisplayFields: map[string]string{
			"finding_name": "Finding Name",
			"secret":       "Secret",
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, outcome.Warnings)
	assert.Contains(t, outcome.Warnings[0], "secret")

	row := outcome.Result.Results[0]
	assert.Contains(t, row, "Finding Name")
	assert.NotContains(t, row, "Secret")
}

func TestExecuteAllUnknownDisplayFieldsFallBackToDefaults(t *testing.T) {
	backend := newFakeBackend()
	backend.dashboard = &client.DashboardResponse{
		Count: 1,
		Results: []map[string]interface{}{
			{"finding_name": "x", "risk_factor": "High", "cloud_provider": "aws", "region": "eu-west-1"},
		},
	}
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType:      "Cloud Findings",
		DisplayFields: map[string]string{"secret": "Secret"},
	})
	require.NoError(t, err)
	require.Len(t, outcome.Result.Results, 1)

	row := outcome.Result.Results[0]
	assert.Len(t, row, 4, "full default display set applies when nothing survives")
	assert.Equal(t, "x", row["Finding Name"])
	assert.Equal(t, "High", row["Severity"])
}

func TestExecuteBackfilledDateReachesParams(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())
	engine.validator.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}

	_, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		Filters:  map[string]string{"present_on_date_after": "2025-01-01"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", backend.lastParams.Get("present_on_date_after"))
	assert.Equal(t, "2025-06-15", backend.lastParams.Get("present_on_date_before"))
}

func TestExecuteRejectedDateSkipsDashboard(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	outcome, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		Filters:  map[string]string{"present_on_date_after": "2025/01/01"},
	})
	require.NoError(t, err)

	require.Contains(t, outcome.Invalid, "present_on_date_after")
	assert.Contains(t, outcome.Invalid["present_on_date_after"].Message, "YYYY-MM-DD")
	assert.Equal(t, 0, backend.dashboardCalls)
}

func TestExecuteUnknownDataType(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{DataType: "Mainframe Findings"})
	require.Error(t, err)
	assert.True(t, IsUnknownDataType(err))
}

func TestExecuteMissingDataType(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{})
	require.Error(t, err)
	assert.True(t, IsMissingDataType(err))
	assert.Equal(t, 0, backend.dashboardCalls)
}

func TestExecutePagination(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend, newTestLogger())

	_, err := engine.Execute(context.Background(), QueryOptions{
		DataType: "Cloud Findings",
		Page:     3,
		PageSize: 25,
		Search:   "s3",
	})
	require.NoError(t, err)

	assert.Equal(t, "3", backend.lastParams.Get("page"))
	assert.Equal(t, "25", backend.lastParams.Get("page_size"))
	assert.Equal(t, "s3", backend.lastParams.Get("search"))
}

func TestComposeOrdering(t *testing.T) {
	tests := []struct {
		requested string
		fallback  string
		want      string
	}{
		{"", "", ""},
		{"", "last_seen", "-last_seen"},
		{"risk_factor", "last_seen", "-risk_factor"},
		{"-risk_factor", "last_seen", "-risk_factor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, composeOrdering(tt.requested, tt.fallback))
	}
}
