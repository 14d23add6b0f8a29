// Package config defines the application configuration for the
// assistant service. Values load from YAML with environment variable
// overrides; see pkg/config for the loading rules.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/luthortech/aiops-assistant/internal/storage"
	"github.com/luthortech/aiops-assistant/pkg/config"
	"github.com/luthortech/aiops-assistant/pkg/logger"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	// Service configuration
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"aiops-assistant"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	Common  config.CommonConfig     `yaml:"logging,inline"`
	HTTP    config.HTTPServerConfig `yaml:"http,inline"`
	Metrics config.MetricsConfig    `yaml:"metrics,inline"`

	// Audit configuration
	Audit AuditConfig `yaml:"audit,inline"`

	// Storage configuration backing schema documents and the audit archive
	Storage StorageConfig `yaml:"storage,inline"`

	// Planner/SQL drafting configuration
	SQL SQLConfig `yaml:"sql,inline"`
}

// AuditConfig holds audit log configuration.
type AuditConfig struct {
	Enabled bool   `env:"AUDIT_ENABLED" yaml:"audit_enabled" default:"true"`
	Path    string `env:"AUDIT_PATH" yaml:"audit_path" default:"./data/audit/audit.ndjson"`

	// ArchiveEnabled additionally writes one JSON document per event
	// through the storage backend.
	ArchiveEnabled bool   `env:"AUDIT_ARCHIVE_ENABLED" yaml:"audit_archive_enabled" default:"false"`
	ArchivePrefix  string `env:"AUDIT_ARCHIVE_PREFIX" yaml:"audit_archive_prefix" default:"audit"`
}

// StorageConfig holds storage backend configuration.
type StorageConfig struct {
	Backend  string `env:"STORAGE_BACKEND" yaml:"storage_backend" default:"local"` // "local" or "s3"
	LocalDir string `env:"STORAGE_LOCAL_DIR" yaml:"storage_local_dir" default:"./data"`
	S3Bucket string `env:"STORAGE_S3_BUCKET" yaml:"storage_s3_bucket"`
	S3Prefix string `env:"STORAGE_S3_PREFIX" yaml:"storage_s3_prefix"`
	S3Region string `env:"STORAGE_S3_REGION" yaml:"storage_s3_region"`
}

// SQLConfig holds SQL drafting configuration.
type SQLConfig struct {
	TopN         int    `env:"SQL_TOP_N" yaml:"sql_top_n" default:"100"`
	SchemaPrefix string `env:"SQL_SCHEMA_PREFIX" yaml:"sql_schema_prefix" default:"schemas"`
}

// Load reads configuration from the given YAML file (optional) with
// environment overrides applied on top.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	var err error
	if path == "" {
		err = config.GetConfigFromEnvVars(cfg)
	} else {
		err = config.GetConfig(cfg, path, false)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *AppConfig) Validate() error {
	var result error

	if err := c.Common.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		result = multierror.Append(result, fmt.Errorf("audit_path must be set when auditing is enabled"))
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			result = multierror.Append(result, fmt.Errorf("storage_local_dir must be set for the local backend"))
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("storage_s3_bucket must be set for the s3 backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("storage_backend must be either 'local' or 's3', got %q", c.Storage.Backend))
	}

	if c.SQL.TopN < 1 {
		result = multierror.Append(result, fmt.Errorf("sql_top_n must be at least 1, got %d", c.SQL.TopN))
	}

	return result
}

// GetLogLevel returns the parsed logger level.
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(strings.ToLower(c.Common.LogLevel))
}

// StorageSettings maps the storage section onto the storage package
// settings type.
func (c *AppConfig) StorageSettings() storage.Settings {
	return storage.Settings{
		Backend:  storage.Backend(c.Storage.Backend),
		BaseDir:  c.Storage.LocalDir,
		S3Bucket: c.Storage.S3Bucket,
		S3Prefix: c.Storage.S3Prefix,
		S3Region: c.Storage.S3Region,
	}
}

// IsProduction returns true if running in a production environment.
func (c *AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// LogConfig logs the effective configuration without sensitive data.
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("environment", c.Environment),
		logger.StringField("log_level", c.Common.LogLevel),
		logger.StringField("log_format", c.Common.LogFormat),
		logger.IntField("http_port", c.HTTP.Port),
		logger.BoolField("metrics_enabled", c.Metrics.ExposeMetrics),
		logger.IntField("metrics_port", c.Metrics.Port),
		logger.BoolField("audit_enabled", c.Audit.Enabled),
		logger.StringField("audit_path", c.Audit.Path),
		logger.BoolField("audit_archive_enabled", c.Audit.ArchiveEnabled),
		logger.StringField("storage_backend", c.Storage.Backend),
		logger.IntField("sql_top_n", c.SQL.TopN),
	)
}
