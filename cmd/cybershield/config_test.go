package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cybershieldio/sdk/pkg/scan"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cybershield.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveConfig_Defaults(t *testing.T) {
	t.Setenv(envAPIURL, "")
	t.Setenv(envAPIKey, "")

	cfg, err := resolveConfig("", connectionOverrides{})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.CyberShield.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.CyberShield.BaseURL)
	}
	if cfg.CyberShield.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.CyberShield.Timeout)
	}
	if cfg.Dashboard.Listen != ":8080" || !cfg.Audit.Enabled {
		t.Errorf("dashboard/audit defaults = %+v / %v", cfg.Dashboard, cfg.Audit.Enabled)
	}
	if cfg.Display.ScanEngines != scan.DefaultScanEngines {
		t.Errorf("ScanEngines = %d", cfg.Display.ScanEngines)
	}
}

func TestResolveConfig_File(t *testing.T) {
	t.Setenv(envAPIURL, "")
	t.Setenv(envAPIKey, "")
	t.Setenv("TEST_CYBERSHIELD_KEY", "secret-from-env")

	path := writeConfig(t, `
cybershield:
  base_url: http://scanner.internal:5000
  api_key: ${TEST_CYBERSHIELD_KEY}
  timeout: 5s
  max_retries: 4
display:
  scan_engines: 60
dashboard:
  listen: 127.0.0.1:9090
  hide_health_details: true
audit:
  enabled: false
  log_file: /tmp/audit.log
export:
  dir: /tmp/reports
  compression: gzip
`)
	cfg, err := resolveConfig(path, connectionOverrides{})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.CyberShield.BaseURL != "http://scanner.internal:5000" {
		t.Errorf("BaseURL = %q", cfg.CyberShield.BaseURL)
	}
	if cfg.CyberShield.APIKey != "secret-from-env" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.CyberShield.APIKey)
	}
	if cfg.CyberShield.Timeout != 5*time.Second || cfg.CyberShield.MaxRetries != 4 {
		t.Errorf("timeout/retries = %v/%d", cfg.CyberShield.Timeout, cfg.CyberShield.MaxRetries)
	}
	if cfg.Display.ScanEngines != 60 || cfg.Display.DetectionCount != scan.DefaultDetectionCount {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if cfg.Dashboard.Listen != "127.0.0.1:9090" || !cfg.Dashboard.HideHealthDetails {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}
	if cfg.Audit.Enabled || cfg.Audit.Logger.LogFile != "/tmp/audit.log" {
		t.Errorf("Audit = %+v", cfg.Audit)
	}
	if cfg.Export.Dir != "/tmp/reports" || cfg.Export.Compression != "gzip" {
		t.Errorf("Export = %+v", cfg.Export)
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "cybershield:\n  base_url: http://from-file\n  api_key: file-key\n")

	t.Setenv(envAPIURL, "http://from-env")
	t.Setenv(envAPIKey, "")
	cfg, err := resolveConfig(path, connectionOverrides{})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.CyberShield.BaseURL != "http://from-env" {
		t.Errorf("env should override file, got %q", cfg.CyberShield.BaseURL)
	}
	if cfg.CyberShield.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.CyberShield.APIKey)
	}

	cfg, err = resolveConfig(path, connectionOverrides{APIURL: "http://from-flag", Timeout: time.Second, Verbose: true})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.CyberShield.BaseURL != "http://from-flag" {
		t.Errorf("flag should override env, got %q", cfg.CyberShield.BaseURL)
	}
	if cfg.CyberShield.Timeout != time.Second || cfg.LogLevel != "debug" {
		t.Errorf("timeout/log level = %v/%q", cfg.CyberShield.Timeout, cfg.LogLevel)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	t.Setenv(envAPIURL, "")
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "cybershield: [unclosed"},
		{"empty url", "cybershield:\n  base_url: \"\"\n"},
		{"bad compression", "export:\n  compression: lz4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := resolveConfig(writeConfig(t, tt.body), connectionOverrides{}); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := resolveConfig(filepath.Join(t.TempDir(), "missing.yaml"), connectionOverrides{}); err == nil {
		t.Error("missing file should fail")
	}
}

func TestBuildRequest(t *testing.T) {
	in := scanInput{Subject: "payload", EmailSubject: "Invoice", Sender: "a@example.com"}
	tests := []struct {
		module scan.Module
		want   scan.Request
	}{
		{scan.ModuleEmail, scan.EmailRequest{Content: "payload", Subject: "Invoice", Sender: "a@example.com"}},
		{scan.ModuleSMS, scan.SMSRequest{Content: "payload", Sender: "a@example.com"}},
		{scan.ModulePhone, scan.PhoneRequest{Number: "payload"}},
		{scan.ModuleWeb, scan.WebRequest{URL: "payload"}},
	}
	for _, tt := range tests {
		t.Run(tt.module.String(), func(t *testing.T) {
			got, err := buildRequest(tt.module, in)
			if err != nil {
				t.Fatalf("buildRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := buildRequest(scan.Module("fax"), in); err == nil {
		t.Error("unknown module should fail")
	}
}
