package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 3, cfg.Upstream.RetryMax)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad transport",
			mutate:  func(c *Config) { c.Server.Transport = "grpc" },
			wantErr: "transport",
		},
		{
			name: "http transport needs addr",
			mutate: func(c *Config) {
				c.Server.Transport = "http"
				c.Server.Addr = ""
			},
			wantErr: "addr",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.Upstream.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "negative retry_max",
			mutate:  func(c *Config) { c.Upstream.RetryMax = -1 },
			wantErr: "retry_max",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.ValidateCredentials(), "empty credentials rejected")

	cfg.Upstream.BaseURL = "https://cspm.demo.accuknox.com"
	assert.Error(t, cfg.ValidateCredentials(), "token still missing")

	cfg.Upstream.APIToken = "token"
	assert.NoError(t, cfg.ValidateCredentials())
}

func TestGetSummaryRedactsToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upstream.APIToken = "very-secret"

	summary := cfg.GetSummary()
	upstream := summary["upstream"].(map[string]interface{})

	assert.Equal(t, true, upstream["token_set"])
	for _, v := range upstream {
		assert.NotEqual(t, "very-secret", v)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
upstream:
  base_url: "https://cspm.example.com"
  timeout: 10s
server:
  transport: "http"
  addr: ":9000"
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := NewLoader().LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, "https://cspm.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified settings keep their defaults
	assert.Equal(t, 3, cfg.Upstream.RetryMax)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CSPMMCP_BASE_URL", "https://env.example.com")
	t.Setenv("CSPMMCP_API_TOKEN", "env-token")
	t.Setenv("CSPMMCP_LOG_LEVEL", "warn")

	cfg, err := NewLoader().LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "env-token", cfg.Upstream.APIToken)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigAccuknoxFallbackEnv(t *testing.T) {
	t.Setenv("ACCUKNOX_BASE_URL", "https://fallback.example.com")
	t.Setenv("ACCUKNOX_API_TOKEN", "fallback-token")

	cfg, err := NewLoader().LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://fallback.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "fallback-token", cfg.Upstream.APIToken)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("logging:\n  level: bogus\n"), 0644))

	_, err := NewLoader().LoadConfig(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGenerateExampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.yaml")

	require.NoError(t, NewLoader().GenerateExampleConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "upstream:")
	assert.Contains(t, string(data), "transport:")
}
