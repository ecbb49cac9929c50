package server

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/accuknox/cspm-mcp/pkg/asset"
	"github.com/accuknox/cspm-mcp/pkg/client"
	"github.com/accuknox/cspm-mcp/pkg/config"
	"github.com/accuknox/cspm-mcp/pkg/finding"
	"github.com/accuknox/cspm-mcp/pkg/tools"
)

// Server bundles the MCP server with its configured transport
type Server struct {
	cfg     *config.Config
	logger  *logrus.Logger
	version string
	mcp     *mcpserver.MCPServer
}

// New assembles the full server: backend client, finding engine, asset
// service and tool registration.
func New(cfg *config.Config, logger *logrus.Logger, version string) *Server {
	apiClient := client.New(client.Options{
		BaseURL:  cfg.Upstream.BaseURL,
		APIToken: cfg.Upstream.APIToken,
		Timeout:  cfg.Upstream.Timeout,
		RetryMax: cfg.Upstream.RetryMax,
	}, logger)

	engine := finding.NewEngine(apiClient, logger)
	assets := asset.NewService(apiClient, logger)

	mcp := mcpserver.NewMCPServer(cfg.Server.Name, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	tools.NewService(engine, assets, logger).Register(mcp)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		version: version,
		mcp:     mcp,
	}
}

// Run serves on the configured transport until the context is canceled
// (http) or stdin is closed (stdio).
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Server.Transport {
	case "stdio":
		s.logger.Info("Serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case "http":
		return s.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Server.Transport)
	}
}
