package config

import (
	"errors"
	"os"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoad_EnvSubstitution(t *testing.T) {
	// Setup env var
	os.Setenv("TEST_KASIR_URL", "https://script.example.com/macros/s/abc/exec")
	defer os.Unsetenv("TEST_KASIR_URL")

	configContent := `
endpoint:
  url: ${TEST_KASIR_URL}
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Endpoint.URL != "https://script.example.com/macros/s/abc/exec" {
		t.Errorf("Expected expanded URL, got %s", cfg.Endpoint.URL)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("endpoint:\n  url: http://localhost:9000/exec\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Endpoint.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Endpoint.Timeout)
	}
	if cfg.Endpoint.Transport != "form" {
		t.Errorf("expected form transport, got %s", cfg.Endpoint.Transport)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay != time.Second || cfg.Retry.MaxDelay != 0 {
		t.Errorf("unexpected retry defaults %+v", cfg.Retry)
	}
	if cfg.Cache.TTL != time.Minute || cfg.Cache.Backend != "memory" {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.TimeLocation().String() != "Asia/Jakarta" {
		t.Errorf("expected Asia/Jakarta, got %s", cfg.TimeLocation())
	}
}

func TestParse_Full(t *testing.T) {
	content := `
endpoint:
  url: http://localhost:9000/exec
  transport: json
  timeout: 2s
retry:
  max_attempts: 5
  base_delay: 250ms
  max_delay: 4s
cache:
  backend: redis
  ttl: 30s
redis:
  url: redis://localhost:6379/0
location: UTC
menu:
  - name: Nasi Goreng
    price: 15000
  - name: Es Teh
    price: 5000
`
	cfg, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Endpoint.Timeout != 2*time.Second || cfg.Endpoint.Transport != "json" {
		t.Errorf("unexpected endpoint %+v", cfg.Endpoint)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 250*time.Millisecond || cfg.Retry.MaxDelay != 4*time.Second {
		t.Errorf("unexpected retry %+v", cfg.Retry)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL != 30*time.Second {
		t.Errorf("unexpected cache %+v", cfg.Cache)
	}
	if len(cfg.Menu) != 2 || cfg.Menu[1].Name != "Es Teh" || cfg.Menu[1].Price != 5000 {
		t.Errorf("unexpected menu %+v", cfg.Menu)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "endpoint:\n  timeout: 1s\n"},
		{"placeholder url", "endpoint:\n  url: PASTE_YOUR_URL\n"},
		{"bad transport", "endpoint:\n  url: http://x\n  transport: iframe\n"},
		{"redis without url", "endpoint:\n  url: http://x\ncache:\n  backend: redis\n"},
		{"bad backend", "endpoint:\n  url: http://x\ncache:\n  backend: disk\n"},
		{"bad location", "endpoint:\n  url: http://x\nlocation: Mars/Olympus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := Parse([]byte("endpoint:\n  url: PASTE_YOUR_URL\n"))
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("expected ErrEndpointNotConfigured, got %v", err)
	}
}
