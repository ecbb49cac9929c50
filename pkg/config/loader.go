package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from various sources
type Loader struct {
	configPaths []string
	configName  string
	configType  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		configPaths: []string{
			".",
			homeDir,
			"/etc/cspm-mcp",
		},
		configName: ".cspm-mcp",
		configType: "yaml",
	}
}

// LoadConfig loads configuration with proper merging of defaults, config
// file, .env file and environment variables.
func (l *Loader) LoadConfig(configFile string) (*Config, error) {
	// A .env file next to the binary keeps parity with how the backend
	// credentials have always been supplied. Missing file is fine.
	_ = godotenv.Load()

	config := DefaultConfig()

	v := viper.New()
	v.SetConfigType(l.configType)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(l.configName)
		for _, path := range l.configPaths {
			v.AddConfigPath(path)
		}
	}

	v.SetEnvPrefix("CSPMMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	l.bindEnvironmentVariables(v)

	configFileExists := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, defaults plus env vars apply
	} else {
		configFileExists = true
	}

	if configFileExists || l.hasRelevantEnvVars() {
		if err := l.mergeWithDefaults(v, config); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// mergeWithDefaults merges user configuration over the defaults,
// preserving defaults unless explicitly overridden.
func (l *Loader) mergeWithDefaults(v *viper.Viper, defaultConfig *Config) error {
	var userConfig map[string]interface{}
	if err := v.Unmarshal(&userConfig); err != nil {
		return fmt.Errorf("failed to unmarshal user config: %w", err)
	}

	if upstream, exists := userConfig["upstream"]; exists {
		if err := l.mergeStruct(upstream, &defaultConfig.Upstream); err != nil {
			return fmt.Errorf("failed to merge upstream config: %w", err)
		}
	}

	if server, exists := userConfig["server"]; exists {
		if err := l.mergeStruct(server, &defaultConfig.Server); err != nil {
			return fmt.Errorf("failed to merge server config: %w", err)
		}
	}

	if logging, exists := userConfig["logging"]; exists {
		if err := l.mergeStruct(logging, &defaultConfig.Logging); err != nil {
			return fmt.Errorf("failed to merge logging config: %w", err)
		}
	}

	return nil
}

// mergeStruct merges data into a target struct, overriding only the
// fields present in data.
func (l *Loader) mergeStruct(data interface{}, target interface{}) error {
	dataBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return yaml.Unmarshal(dataBytes, target)
}

// hasRelevantEnvVars checks if any cspm-mcp environment variables are set
func (l *Loader) hasRelevantEnvVars() bool {
	envVars := []string{
		"CSPMMCP_BASE_URL",
		"CSPMMCP_API_TOKEN",
		"CSPMMCP_TRANSPORT",
		"CSPMMCP_ADDR",
		"CSPMMCP_LOG_LEVEL",
		"ACCUKNOX_BASE_URL",
		"ACCUKNOX_API_TOKEN",
	}

	for _, envVar := range envVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}

	return false
}

// bindEnvironmentVariables binds environment variables to viper
func (l *Loader) bindEnvironmentVariables(v *viper.Viper) {
	// ACCUKNOX_* are the names the backend's own tooling uses in .env
	// files, so they are honored as fallbacks.
	v.BindEnv("upstream.base_url", "CSPMMCP_BASE_URL", "ACCUKNOX_BASE_URL")
	v.BindEnv("upstream.api_token", "CSPMMCP_API_TOKEN", "ACCUKNOX_API_TOKEN")
	v.BindEnv("upstream.timeout", "CSPMMCP_UPSTREAM_TIMEOUT")
	v.BindEnv("upstream.retry_max", "CSPMMCP_UPSTREAM_RETRY_MAX")

	v.BindEnv("server.transport", "CSPMMCP_TRANSPORT")
	v.BindEnv("server.addr", "CSPMMCP_ADDR")

	v.BindEnv("logging.level", "CSPMMCP_LOG_LEVEL")
	v.BindEnv("logging.format", "CSPMMCP_LOG_FORMAT")
	v.BindEnv("logging.color", "CSPMMCP_LOG_COLOR")
	v.BindEnv("logging.file", "CSPMMCP_LOG_FILE")
}

// SaveConfig saves configuration to a file
func (l *Loader) SaveConfig(config *Config, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateExampleConfig generates an example configuration file with comments
func (l *Loader) GenerateExampleConfig(filePath string) error {
	yamlContent := `# cspm-mcp Configuration File
# This file overrides the built-in defaults - only specify settings you
# want to change.

upstream:
  # Backend connection. The API token is better supplied through the
  # environment (CSPMMCP_API_TOKEN / ACCUKNOX_API_TOKEN) or a .env file.
  base_url: "https://cspm.demo.accuknox.com"
  # api_token: "..."
  timeout: 30s
  retry_max: 3

server:
  transport: "stdio"   # stdio or http
  addr: ":8000"        # used by the http transport

# logging:
#   level: "info"      # trace, debug, info, warn, error
#   format: "text"     # text, json
#   color: true
#   # file: "/path/to/logfile"

# Environment Variable Examples:
# export CSPMMCP_BASE_URL=https://cspm.demo.accuknox.com
# export CSPMMCP_API_TOKEN=...
# export CSPMMCP_TRANSPORT=http
# export CSPMMCP_LOG_LEVEL=debug
`

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(filePath, []byte(yamlContent), 0644)
}

// GetConfigPath returns the default path to the configuration file
func (l *Loader) GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, l.configName+".yaml")
}

// ConfigExists checks if a configuration file exists
func (l *Loader) ConfigExists(configFile string) bool {
	if configFile != "" {
		_, err := os.Stat(configFile)
		return err == nil
	}

	for _, path := range l.configPaths {
		for _, ext := range []string{".yaml", ".yml"} {
			configPath := filepath.Join(path, l.configName+ext)
			if _, err := os.Stat(configPath); err == nil {
				return true
			}
		}
	}

	return false
}

// DefaultLoader is the global configuration loader
var DefaultLoader = NewLoader()
