package cspmmcp

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/accuknox/cspm-mcp/pkg/config"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // This will be set during build

	// Global configuration instance
	globalConfig *config.Config
)

// NewRootCommand creates the root command for the cspm-mcp CLI
func NewRootCommand(logger *logrus.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cspm-mcp",
		Short: "MCP server for AccuKnox CSPM findings and assets",
		Long: `cspm-mcp exposes security findings and cloud asset data from an
AccuKnox-style CSPM backend as MCP tools, so LLM-driven clients can
query them safely.

Finding queries are schema-driven: filterable and displayable fields
are discovered per data type, and filter values are validated against
the live backend before any query runs.

Configuration priority (highest to lowest):
  1. Command line flags
  2. Environment variables (CSPMMCP_* or ACCUKNOX_*)
  3. Configuration file (~/.cspm-mcp.yaml)
  4. Built-in defaults`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load configuration
			var err error
			globalConfig, err = config.DefaultLoader.LoadConfig(cfgFile)
			if err != nil {
				logger.Fatalf("Failed to load configuration: %v", err)
			}

			// Set log level based on verbose flag or config
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			} else {
				if level, err := logrus.ParseLevel(globalConfig.Logging.Level); err == nil {
					logger.SetLevel(level)
				}
			}

			// Configure logger format and color
			if globalConfig.Logging.Format == "json" {
				logger.SetFormatter(&logrus.JSONFormatter{
					TimestampFormat: "2006-01-02 15:04:05",
				})
			} else {
				logger.SetFormatter(&logrus.TextFormatter{
					FullTimestamp:   true,
					TimestampFormat: "2006-01-02 15:04:05",
					DisableColors:   !globalConfig.Logging.Color,
				})
			}

			// Set output file if specified
			if globalConfig.Logging.File != "" {
				if file, err := os.OpenFile(globalConfig.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
					logger.SetOutput(file)
				} else {
					logger.Warnf("Failed to open log file %s: %v", globalConfig.Logging.File, err)
				}
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: searches for .cspm-mcp.yaml in ., ~, /etc/cspm-mcp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output (overrides config log level)")

	// Add subcommands
	rootCmd.AddCommand(NewServeCommand(logger))
	rootCmd.AddCommand(NewConfigCommand(logger))

	return rootCmd
}

// GetGlobalConfig returns the global configuration instance
func GetGlobalConfig() *config.Config {
	return globalConfig
}
