package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SF_PASSWORD", "s3cret")

	path := writeConfig(t, `
cluster:
  mvip: 10.0.0.1
  login: admin
  password: ${TEST_SF_PASSWORD}
  api_version: "7.0"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cluster.Password != "s3cret" {
		t.Errorf("Expected password from env, got %q", cfg.Cluster.Password)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
cluster:
  mvip: 10.0.0.1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Client.Timeout)
	}
	if cfg.Client.InsecureSkipVerify == nil || !*cfg.Client.InsecureSkipVerify {
		t.Error("Expected insecure_skip_verify to default to true")
	}
	if cfg.Client.Retry.MaxAttempts != 5 || cfg.Client.Retry.InitialDelay != time.Second ||
		cfg.Client.Retry.MaxDelay != 60*time.Second || cfg.Client.Retry.BackoffMultiple != 2 {
		t.Errorf("Unexpected retry defaults: %+v", cfg.Client.Retry)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
cluster:
  mvip: https://cluster.example.com
  login: admin
  password: pw
  api_version: "8.0"
client:
  timeout: 10s
  call_timeout: 2m
  insecure_skip_verify: false
  retry:
    max_attempts: 3
    initial_delay: 500ms
    max_delay: 5s
    backoff_multiple: 3
  rate_limit:
    requests_per_second: 20
    burst: 5
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rc, err := cfg.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig failed: %v", err)
	}
	if rc.Endpoint.URL != "https://cluster.example.com" {
		t.Errorf("Unexpected endpoint URL %q", rc.Endpoint.URL)
	}
	if rc.Version != "8.0" {
		t.Errorf("Expected version 8.0, got %q", rc.Version)
	}
	if rc.Timeout != 10*time.Second || rc.CallTimeout != 2*time.Minute {
		t.Errorf("Unexpected timeouts: %v / %v", rc.Timeout, rc.CallTimeout)
	}
	if !rc.VerifyTLS {
		t.Error("Expected TLS verification to be enabled")
	}
	if rc.Retry.MaxAttempts != 3 || rc.Retry.InitialDelay != 500*time.Millisecond ||
		rc.Retry.MaxDelay != 5*time.Second || rc.Retry.BackoffMultiple != 3 {
		t.Errorf("Unexpected retry config: %+v", rc.Retry)
	}
	if rc.RateLimit.RequestsPerSecond != 20 || rc.RateLimit.Burst != 5 {
		t.Errorf("Unexpected rate limit: %+v", rc.RateLimit)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad retry", "client:\n  retry:\n    max_attempts: -1\n"},
		{"max below initial", "client:\n  retry:\n    initial_delay: 10s\n    max_delay: 1s\n"},
		{"bad level", "logging:\n  level: verbose\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"negative rate", "client:\n  rate_limit:\n    requests_per_second: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional failed: %v", err)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Expected defaults, got %+v", cfg.Client)
	}
}

func TestClientConfig_RequiresClusterFields(t *testing.T) {
	cfg := Default()
	if _, err := cfg.ClientConfig(); err == nil {
		t.Error("Expected error without mvip")
	}

	cfg.Cluster = ClusterConfig{MVIP: "10.0.0.1", Login: "admin", Password: "pw"}
	if _, err := cfg.ClientConfig(); err == nil {
		t.Error("Expected error without api_version")
	}

	cfg.Cluster.APIVersion = "7.0"
	rc, err := cfg.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig failed: %v", err)
	}
	if rc.VerifyTLS {
		t.Error("Expected TLS verification to be skipped by default")
	}
}
