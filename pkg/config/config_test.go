package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	CommonConfig `yaml:",inline"`
	HTTP         HTTPServerConfig `yaml:"http,inline"`
	Metrics      MetricsConfig    `yaml:"metrics,inline"`

	APIToken string        `env:"API_TOKEN" yaml:"api_token" required:"true"`
	Debug    bool          `env:"DEBUG" yaml:"debug" default:"false"`
	Timeout  time.Duration `env:"TIMEOUT" yaml:"timeout" default:"30s"`
	Origins  []string      `env:"ORIGINS" yaml:"origins" default:"http://localhost:3000"`
}

// Validate implements the Validator interface to validate embedded structs
func (c testConfig) Validate() error {
	if err := c.CommonConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

func TestGetConfigFromEnvVars(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg testConfig)
		wantErr bool
	}{
		{
			name:    "all defaults except required field",
			envVars: map[string]string{"API_TOKEN": "test-token"},
			check: func(t *testing.T, cfg testConfig) {
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "json", cfg.LogFormat)
				assert.Equal(t, 8080, cfg.HTTP.Port)
				assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout())
				assert.Equal(t, 30*time.Second, cfg.Timeout)
				assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins)
				assert.False(t, cfg.Debug)
			},
		},
		{
			name: "environment overrides defaults",
			envVars: map[string]string{
				"API_TOKEN": "test-token",
				"HTTP_PORT": "9999",
				"LOG_LEVEL": "debug",
				"DEBUG":     "true",
				"TIMEOUT":   "2m",
				"ORIGINS":   "https://a.example, https://b.example",
			},
			check: func(t *testing.T, cfg testConfig) {
				assert.Equal(t, 9999, cfg.HTTP.Port)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.True(t, cfg.Debug)
				assert.Equal(t, 2*time.Minute, cfg.Timeout)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
			},
		},
		{
			name:    "missing required field",
			envVars: map[string]string{},
			wantErr: true,
		},
		{
			name: "invalid log level fails validation",
			envVars: map[string]string{
				"API_TOKEN": "test-token",
				"LOG_LEVEL": "loud",
			},
			wantErr: true,
		},
		{
			name: "invalid port fails validation",
			envVars: map[string]string{
				"API_TOKEN": "test-token",
				"HTTP_PORT": "70000",
			},
			wantErr: true,
		},
		{
			name: "unparseable int",
			envVars: map[string]string{
				"API_TOKEN": "test-token",
				"HTTP_PORT": "not-a-port",
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}

			var cfg testConfig
			err := GetConfigFromEnvVars(&cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestGetConfigYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := []byte("api_token: from-yaml\nhttp_port: 7070\nlog_level: warn\n")
	require.NoError(t, os.WriteFile(path, yamlContent, 0o600))

	t.Run("yaml values loaded", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, path, false))
		assert.Equal(t, "from-yaml", cfg.APIToken)
		assert.Equal(t, 7070, cfg.HTTP.Port)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "6060")
		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, path, false))
		assert.Equal(t, 6060, cfg.HTTP.Port)
		assert.Equal(t, "from-yaml", cfg.APIToken)
	})

	t.Run("missing file fails when not allowed", func(t *testing.T) {
		var cfg testConfig
		assert.Error(t, GetConfig(&cfg, filepath.Join(dir, "absent.yaml"), false))
	})

	t.Run("missing file falls back to env when allowed", func(t *testing.T) {
		t.Setenv("API_TOKEN", "from-env")
		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, filepath.Join(dir, "absent.yaml"), true))
		assert.Equal(t, "from-env", cfg.APIToken)
	})
}
