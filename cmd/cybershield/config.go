package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/audit"
	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/export"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// Environment fallbacks for the service connection.
const (
	envAPIURL = "CYBERSHIELD_API_URL"
	envAPIKey = "CYBERSHIELD_API_KEY"
)

// Config is the CLI configuration file.
type Config struct {
	// CyberShield service connection
	CyberShield client.Config `yaml:"cybershield"`

	// Placeholder counts for unannotated file results
	Display scan.DisplayDefaults `yaml:"display"`

	Dashboard struct {
		Listen          string        `yaml:"listen"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MinFreeDiskMB   uint64        `yaml:"min_free_disk_mb"`
		// HideHealthDetails reports only the overall status on /readyz.
		HideHealthDetails bool `yaml:"hide_health_details"`
	} `yaml:"dashboard"`

	Audit struct {
		Enabled bool               `yaml:"enabled"`
		Logger  audit.LoggerConfig `yaml:",inline"`
	} `yaml:"audit"`

	Archive archive.Config `yaml:"archive"`

	Export struct {
		Dir         string `yaml:"dir"`
		Compression string `yaml:"compression"` // zstd or gzip
	} `yaml:"export"`

	LogLevel string `yaml:"log_level"`
	Verbose  bool   `yaml:"verbose"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.CyberShield = *client.DefaultConfig()
	cfg.CyberShield.BaseURL = "http://localhost:5000"
	cfg.Display = scan.DefaultDisplayDefaults()
	cfg.Dashboard.Listen = ":8080"
	cfg.Dashboard.ShutdownTimeout = 10 * time.Second
	cfg.Dashboard.MinFreeDiskMB = 100
	cfg.Audit.Enabled = true
	cfg.Audit.Logger = *audit.DefaultLoggerConfig()
	cfg.Archive = *archive.DefaultConfig()
	cfg.Export.Dir = "."
	cfg.Export.Compression = string(export.AlgorithmZSTD)
	cfg.LogLevel = "info"
	return cfg
}

// loadConfig reads a YAML file over cfg. ${VAR} references are expanded
// before parsing.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// connectionOverrides holds the flag values that win over the file.
type connectionOverrides struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
	Verbose bool
}

// resolveConfig builds the effective configuration: defaults, then the
// file at path (if any), then environment, then flags.
func resolveConfig(path string, o connectionOverrides) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		if err := loadConfig(path, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(envAPIURL); v != "" {
		cfg.CyberShield.BaseURL = v
	}
	if v := os.Getenv(envAPIKey); v != "" {
		cfg.CyberShield.APIKey = v
	}

	if o.APIURL != "" {
		cfg.CyberShield.BaseURL = o.APIURL
	}
	if o.APIKey != "" {
		cfg.CyberShield.APIKey = o.APIKey
	}
	if o.Timeout > 0 {
		cfg.CyberShield.Timeout = o.Timeout
	}
	if o.Verbose {
		cfg.Verbose = true
		cfg.LogLevel = "debug"
	}

	if cfg.CyberShield.BaseURL == "" {
		return nil, fmt.Errorf("service URL is required (-api-url or %s)", envAPIURL)
	}
	if _, err := export.ParseAlgorithm(cfg.Export.Compression); err != nil {
		return nil, err
	}
	return cfg, nil
}
