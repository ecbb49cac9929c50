package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/accuknox/cspm-mcp/pkg/asset"
	"github.com/accuknox/cspm-mcp/pkg/finding"
)

// Service owns the tool handlers and their dependencies
type Service struct {
	engine *finding.Engine
	assets *asset.Service
	logger *logrus.Logger
}

// NewService creates the tool service
func NewService(engine *finding.Engine, assets *asset.Service, logger *logrus.Logger) *Service {
	return &Service{
		engine: engine,
		assets: assets,
		logger: logger,
	}
}

// Register adds every tool to the MCP server
func (s *Service) Register(srv *server.MCPServer) {
	s.registerFindingTools(srv)
	s.registerAssetTools(srv)
}
