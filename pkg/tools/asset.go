package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/accuknox/cspm-mcp/pkg/asset"
)

// registerAssetTools wires the asset search and model summary tools
func (s *Service) registerAssetTools(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("search_assets",
		mcp.WithDescription(`READ-ONLY: Search and filter cloud infrastructure assets.

Examples:
  - "How many Models do I have?" -> type_category="Models", return_type="count"
  - "Show me Container assets" -> type_category="Container"
  - "List AWS assets" -> cloud_provider="aws"
  - "Show assets with security details" -> detailed=true`),
		mcp.WithString("asset_id",
			mcp.Description("Filter by specific asset ID"),
		),
		mcp.WithString("type_name",
			mcp.Description("Filter by asset type name"),
		),
		mcp.WithString("type_category",
			mcp.Description("Filter by category (Configuration, User, Models, Block Storage, CI/CD, Datasets, Container, Audit logging, IaC_github-repository)"),
		),
		mcp.WithString("label_name",
			mcp.Description("Filter by label name"),
		),
		mcp.WithString("region",
			mcp.Description("Filter by cloud region"),
		),
		mcp.WithString("cloud_provider",
			mcp.Description("Filter by provider (aws, azure, gcp)"),
		),
		mcp.WithString("return_type",
			mcp.Description("\"list\" (default) or \"count\""),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 10)"),
		),
		mcp.WithBoolean("detailed",
			mcp.Description("Include labels and vulnerability counts"),
		),
		mcp.WithString("present_on_date_after",
			mcp.Description("Assets present on or after this date (YYYY-MM-DD). Defaults to two days ago."),
		),
		mcp.WithString("present_on_date_before",
			mcp.Description("Assets present on or before this date (YYYY-MM-DD). Defaults to today."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleSearchAssets)

	srv.AddTool(mcp.NewTool("get_model_vulnerabilities",
		mcp.WithDescription(`READ-ONLY: Get the AI/ML model security vulnerability summary.

Covers ML models, LLM models and datasets with a severity breakdown
(Critical, High, Medium, Low).`),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetModelVulnerabilities)

	srv.AddTool(mcp.NewTool("get_model_stats",
		mcp.WithDescription(`READ-ONLY: Get deployed vs not-deployed AI model statistics.

The last-seen window defaults to the last two weeks.`),
		mcp.WithString("last_seen_after",
			mcp.Description("Window start (YYYY-MM-DD). Defaults to two weeks ago."),
		),
		mcp.WithString("last_seen_before",
			mcp.Description("Window end (YYYY-MM-DD). Defaults to today."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetModelStats)
}

func (s *Service) handleSearchAssets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.assets.Search(ctx, asset.SearchOptions{
		AssetID:             request.GetString("asset_id", ""),
		TypeName:            request.GetString("type_name", ""),
		TypeCategory:        request.GetString("type_category", ""),
		LabelName:           request.GetString("label_name", ""),
		Region:              request.GetString("region", ""),
		CloudProvider:       request.GetString("cloud_provider", ""),
		ReturnType:          request.GetString("return_type", "list"),
		Limit:               request.GetInt("limit", 10),
		Detailed:            request.GetBool("detailed", false),
		PresentOnDateAfter:  request.GetString("present_on_date_after", ""),
		PresentOnDateBefore: request.GetString("present_on_date_before", ""),
	})
	if err != nil {
		s.logger.Debugf("search_assets failed: %v", err)
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(report), nil
}

func (s *Service) handleGetModelVulnerabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.assets.ModelVulnerabilities(ctx)
	if err != nil {
		s.logger.Debugf("get_model_vulnerabilities failed: %v", err)
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(report), nil
}

func (s *Service) handleGetModelStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.assets.ModelStats(ctx,
		request.GetString("last_seen_after", ""),
		request.GetString("last_seen_before", ""),
	)
	if err != nil {
		s.logger.Debugf("get_model_stats failed: %v", err)
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(report), nil
}
