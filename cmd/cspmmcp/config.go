package cspmmcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/accuknox/cspm-mcp/pkg/config"
)

// NewConfigCommand creates the config management command
func NewConfigCommand(logger *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cspm-mcp configuration",
		Long: `Manage cspm-mcp configuration files and settings.

Built-in defaults work out of the box; only the backend URL and API
token need to come from the environment or a config file.

Examples:
  # Show current effective configuration
  cspm-mcp config show

  # Show where cspm-mcp looks for config files
  cspm-mcp config path

  # Generate an example config file to customize
  cspm-mcp config init`,
	}

	cmd.AddCommand(NewConfigShowCommand(logger))
	cmd.AddCommand(NewConfigInitCommand(logger))
	cmd.AddCommand(NewConfigPathCommand(logger))

	return cmd
}

// NewConfigShowCommand shows the current effective configuration
func NewConfigShowCommand(logger *logrus.Logger) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current effective configuration",
		Long: `Show the effective configuration after merging built-in defaults,
the configuration file (if any) and environment variables. The API
token itself is never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}

			// Never echo the credential
			redacted := *cfg
			if redacted.Upstream.APIToken != "" {
				redacted.Upstream.APIToken = "<set>"
			}

			switch strings.ToLower(format) {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(&redacted)
			default:
				encoder := yaml.NewEncoder(os.Stdout)
				encoder.SetIndent(2)
				defer encoder.Close()
				return encoder.Encode(&redacted)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewConfigInitCommand creates a new configuration file
func NewConfigInitCommand(logger *logrus.Logger) *cobra.Command {
	var configFile string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				path = config.DefaultLoader.GetConfigPath()
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
				}
			}

			if err := config.DefaultLoader.GenerateExampleConfig(path); err != nil {
				return fmt.Errorf("failed to generate config file: %w", err)
			}

			fmt.Printf("Generated example configuration at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "file", "f", "", "Path for the generated config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// NewConfigPathCommand shows the configuration search paths
func NewConfigPathCommand(logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Default config file: %s\n", config.DefaultLoader.GetConfigPath())
			fmt.Printf("Search paths: ., ~, /etc/cspm-mcp (.cspm-mcp.yaml or .cspm-mcp.yml)\n")
			if config.DefaultLoader.ConfigExists("") {
				fmt.Printf("A config file was found in the search paths.\n")
			} else {
				fmt.Printf("No config file found; built-in defaults apply.\n")
			}
			return nil
		},
	}
}
