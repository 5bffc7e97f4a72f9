package config

import (
	"time"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
	redisclient "github.com/oggyno/kasir-restoran/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Endpoint EndpointConfig     `yaml:"endpoint"`
	Retry    RetryConfig        `yaml:"retry"`
	Cache    CacheConfig        `yaml:"cache"`
	Redis    redisclient.Config `yaml:"redis"`
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Location string             `yaml:"location"` // IANA zone used to stamp records
	Menu     domain.Menu        `yaml:"menu"`
}

// EndpointConfig describes the spreadsheet endpoint.
type EndpointConfig struct {
	URL        string        `yaml:"url"`
	Transport  string        `yaml:"transport"` // form, query, json
	Timeout    time.Duration `yaml:"timeout"`
	DailyLimit int           `yaml:"daily_limit"` // request quota for usage reporting; 0 keeps the default
}

// RetryConfig holds the retry budget for one logical operation.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"` // 0 = uncapped
}

// CacheConfig selects the read cache backend.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis
	TTL     time.Duration `yaml:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Defaults.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultCacheTTL    = 60 * time.Second
	DefaultPort        = 8080
	DefaultLocation    = "Asia/Jakarta"
	DefaultTransport   = "form"
	DefaultBackend     = "memory"
)
