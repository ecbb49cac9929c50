package cspmmcp

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/accuknox/cspm-mcp/pkg/server"
)

// ServeOptions holds options for the serve command
type ServeOptions struct {
	Transport string
	Addr      string
}

// NewServeCommand creates the serve command
func NewServeCommand(logger *logrus.Logger) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server on the configured transport.

The stdio transport (default) is for MCP clients that spawn the server
as a child process. The http transport exposes a streamable /mcp
endpoint plus /health, /info and /tools routes.

Examples:
  # Serve over stdio (for Claude Desktop, Gemini CLI, etc.)
  cspm-mcp serve

  # Serve over HTTP on port 8000
  cspm-mcp serve --transport http --addr :8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(cmd.Context(), opts, logger)
		},
	}

	cmd.Flags().StringVarP(&opts.Transport, "transport", "t", "",
		"Transport to serve on (stdio, http); overrides config")
	cmd.Flags().StringVarP(&opts.Addr, "addr", "a", "",
		"Listen address for the http transport; overrides config")

	return cmd
}

// runServeCommand executes the serve command
func runServeCommand(ctx context.Context, opts *ServeOptions, logger *logrus.Logger) error {
	cfg := GetGlobalConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	if opts.Transport != "" {
		cfg.Server.Transport = opts.Transport
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	// Shut down gracefully on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting %s (transport: %s)", cfg.Server.Name, cfg.Server.Transport)

	return server.New(cfg, logger, version).Run(ctx)
}
