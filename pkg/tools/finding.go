package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/accuknox/cspm-mcp/pkg/finding"
)

// registerFindingTools wires the finding query engine into the server
func (s *Service) registerFindingTools(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("get_finding_config",
		mcp.WithDescription(`READ-ONLY: Get the query schema for a finding data type.

Returns which fields may be filtered, displayed, grouped and ordered for
the data type, plus the default filters the backend recommends. Call this
before get_finding to learn the valid field names. Omit data_type to list
the available data types.`),
		mcp.WithString("data_type",
			mcp.Description("Data type name, e.g. \"Cloud Findings\". Omit to list available data types."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetFindingConfig)

	srv.AddTool(mcp.NewTool("get_finding",
		mcp.WithDescription(`READ-ONLY: Query security findings for a data type.

Filters are validated against the live backend before the query runs; an
invalid filter value returns the full set of problems together with the
currently valid values, and no finding query is made. Omit display_fields
to get only the count. Set group_by to get summarized counts per group.

Examples:
  - "How many cloud findings do I have?" -> data_type="Cloud Findings" (count only)
  - "Cloud findings grouped by severity" -> group_by="severity"
  - "Critical AWS findings" -> extra_filters={"risk_factor":"Critical","cloud_provider":"aws"}`),
		mcp.WithString("data_type",
			mcp.Required(),
			mcp.Description("Data type name, e.g. \"Cloud Findings\""),
		),
		mcp.WithString("ordering",
			mcp.Description("Sort field; defaults to the data type's configured ordering. Always applied descending."),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Results per page (default: 10)"),
		),
		mcp.WithString("extra_filters",
			mcp.Description("Filters as a JSON object (or JSON-encoded string) of field name to value. Date range fields use YYYY-MM-DD."),
		),
		mcp.WithString("display_fields",
			mcp.Description("Fields to return as a JSON object (or JSON-encoded string) of internal field name to display name. Omit for count only."),
		),
		mcp.WithString("group_by",
			mcp.Description("Group results by this field and return counts per group"),
		),
		mcp.WithString("search",
			mcp.Description("Free-text search"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetFinding)

	srv.AddTool(mcp.NewTool("get_finding_filter",
		mcp.WithDescription(`READ-ONLY: Get the currently valid values for a finding filter field.

Fetches the live dropdown values from the backend; useful to discover
what values a filter accepts before calling get_finding.`),
		mcp.WithString("filter_field",
			mcp.Required(),
			mcp.Description("Filter field name, e.g. \"risk_factor\""),
		),
		mcp.WithString("data_type",
			mcp.Required(),
			mcp.Description("Data type name, e.g. \"Cloud Findings\""),
		),
		mcp.WithString("filter_search",
			mcp.Description("Narrow the value set by this search term"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetFindingFilter)
}

func (s *Service) handleGetFindingConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataType := request.GetString("data_type", "")

	cfg, err := s.engine.Config(ctx, dataType)
	if err != nil {
		s.logger.Debugf("get_finding_config failed: %v", err)
		return errorResult(err), nil
	}

	return jsonResult(cfg), nil
}

func (s *Service) handleGetFinding(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataType, err := request.RequireString("data_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	filters, err := decodeStringMap(args["extra_filters"])
	if err != nil {
		return malformedInputResult("extra_filters", err), nil
	}

	displayFields, err := decodeStringMap(args["display_fields"])
	if err != nil {
		return malformedInputResult("display_fields", err), nil
	}

	outcome, err := s.engine.Execute(ctx, finding.QueryOptions{
		DataType:      dataType,
		Ordering:      request.GetString("ordering", ""),
		Page:          request.GetInt("page", 1),
		PageSize:      request.GetInt("page_size", 10),
		Filters:       filters,
		DisplayFields: displayFields,
		GroupBy:       request.GetString("group_by", ""),
		Search:        request.GetString("search", ""),
	})
	if err != nil {
		s.logger.Debugf("get_finding failed: %v", err)
		return errorResult(err), nil
	}

	return jsonResult(findingResponse(outcome)), nil
}

func (s *Service) handleGetFindingFilter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filterField, err := request.RequireString("filter_field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dataType, err := request.RequireString("data_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dropdown, err := s.engine.FilterValues(ctx, filterField, dataType, request.GetString("filter_search", ""))
	if err != nil {
		s.logger.Debugf("get_finding_filter failed: %v", err)
		return errorResult(err), nil
	}

	return jsonResult(dropdown), nil
}

// findingResponse flattens a QueryOutcome into the response payload:
// the invalid-filter map when validation failed, the shape-specific
// result fields otherwise.
func findingResponse(outcome *finding.QueryOutcome) map[string]interface{} {
	payload := make(map[string]interface{})

	if len(outcome.Warnings) > 0 {
		payload["warnings"] = outcome.Warnings
	}

	if len(outcome.Invalid) > 0 {
		payload["invalid_filters"] = outcome.Invalid
		return payload
	}

	result := outcome.Result
	payload["count"] = result.Count

	switch result.Kind {
	case finding.KindGrouped:
		payload["group_by"] = result.GroupBy
		payload["results"] = result.Results
	case finding.KindDetailed:
		payload["page"] = result.Page
		payload["results"] = result.Results
	}

	return payload
}
