package config

import (
	"fmt"
	"time"
)

// Config represents the main application configuration
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// UpstreamConfig holds connection settings for the CSPM backend
type UpstreamConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	APIToken string        `yaml:"api_token" json:"api_token"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	RetryMax int           `yaml:"retry_max" json:"retry_max"`
}

// ServerConfig controls how the MCP server is exposed
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"` // stdio, http
	Addr      string `yaml:"addr" json:"addr"`
	Name      string `yaml:"name" json:"name"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // trace, debug, info, warn, error, fatal, panic
	Format string `yaml:"format" json:"format"` // text, json
	Color  bool   `yaml:"color" json:"color"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration that works out of the box;
// only the upstream URL and token need to come from the environment.
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:  "",
			APIToken: "",
			Timeout:  30 * time.Second,
			RetryMax: 3,
		},
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      ":8000",
			Name:      "AccuKnox CSPM Server",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
			File:   "",
		},
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("server transport must be 'stdio' or 'http'")
	}

	if c.Server.Transport == "http" && c.Server.Addr == "" {
		return fmt.Errorf("server addr is required for the http transport")
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}

	if c.Upstream.RetryMax < 0 {
		return fmt.Errorf("upstream retry_max cannot be negative")
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("logging level must be one of: %v", validLevels)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging format must be 'text' or 'json'")
	}

	return nil
}

// ValidateCredentials checks the settings that are only required to
// actually talk to the backend. Kept separate from Validate so that
// `config show` works without credentials.
func (c *Config) ValidateCredentials() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base_url is required (set CSPMMCP_BASE_URL or ACCUKNOX_BASE_URL)")
	}
	if c.Upstream.APIToken == "" {
		return fmt.Errorf("upstream api_token is required (set CSPMMCP_API_TOKEN or ACCUKNOX_API_TOKEN)")
	}
	return nil
}

// GetSummary returns a human-readable summary of the configuration
func (c *Config) GetSummary() map[string]interface{} {
	summary := make(map[string]interface{})

	summary["upstream"] = map[string]interface{}{
		"base_url":  c.Upstream.BaseURL,
		"token_set": c.Upstream.APIToken != "",
		"timeout":   c.Upstream.Timeout.String(),
		"retry_max": c.Upstream.RetryMax,
	}

	summary["server"] = map[string]interface{}{
		"transport": c.Server.Transport,
		"addr":      c.Server.Addr,
	}

	summary["logging"] = map[string]interface{}{
		"level":  c.Logging.Level,
		"format": c.Logging.Format,
	}

	return summary
}
