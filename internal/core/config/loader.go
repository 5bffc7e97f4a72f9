package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrEndpointNotConfigured is returned when the endpoint URL is empty or still
// the placeholder from the sample config.
var ErrEndpointNotConfigured = errors.New("endpoint url is not configured")

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Endpoint.Timeout == 0 {
		c.Endpoint.Timeout = DefaultTimeout
	}
	if c.Endpoint.Transport == "" {
		c.Endpoint.Transport = DefaultTransport
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = DefaultBaseDelay
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultBackend
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
}

// Validate checks values that have no sensible default.
func (c *AppConfig) Validate() error {
	if c.Endpoint.URL == "" || strings.Contains(c.Endpoint.URL, "PASTE") {
		return ErrEndpointNotConfigured
	}
	switch c.Endpoint.Transport {
	case "form", "query", "json":
	default:
		return fmt.Errorf("unknown endpoint transport %q", c.Endpoint.Transport)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("cache backend redis requires redis.url")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must not be negative")
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return nil
}

// TimeLocation returns the configured zone; Validate guarantees it loads.
func (c *AppConfig) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.Local
	}
	return loc
}
