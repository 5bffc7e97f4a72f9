// Package control wires configuration into a running application.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyno/kasir-restoran/internal/core/config"
	"github.com/oggyno/kasir-restoran/internal/core/domain"
	redisclient "github.com/oggyno/kasir-restoran/internal/infra/redis"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/cache"
	"github.com/oggyno/kasir-restoran/internal/server"
)

const (
	endpointName         = "sheet"
	statusReportInterval = 30 * time.Second
)

// App owns the endpoint provider, the sync client and the HTTP server.
type App struct {
	cfg         *config.AppConfig
	loc         *time.Location
	provider    *rpc.HTTPProvider
	client      *rpc.Client
	store       rpc.Store
	server      *server.Server
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewApp creates a new App with all dependencies initialized. Nothing is
// started until Start.
func NewApp(cfg *config.AppConfig) (*App, error) {
	// 1. Endpoint provider and write transport
	p, err := rpc.NewHTTPProvider(endpointName, cfg.Endpoint.URL, cfg.Endpoint.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to init endpoint: %w", err)
	}
	if cfg.Endpoint.DailyLimit > 0 {
		p.Monitor.SetDailyLimit(cfg.Endpoint.DailyLimit)
	}
	writer, err := rpc.NewTransport(cfg.Endpoint.Transport)
	if err != nil {
		return nil, err
	}

	// 2. Read cache
	var store rpc.Store
	var redisClient *redisclient.Client
	if cfg.Cache.Backend == "redis" {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, using memory cache", "error", err)
		} else {
			store = rpc.NewRedisCache(redisClient, cfg.Cache.TTL)
			slog.Info("Using Redis cache", "ttl", cfg.Cache.TTL)
		}
	}
	if store == nil {
		store = rpc.NewMemoryCache(cfg.Cache.TTL)
		slog.Debug("Using memory cache", "ttl", cfg.Cache.TTL)
	}

	// 3. Sync client
	client := rpc.NewClient(p, writer, store, rpc.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	})

	a := &App{
		cfg:         cfg,
		loc:         cfg.TimeLocation(),
		provider:    p,
		client:      client,
		store:       store,
		redisClient: redisClient,
		log:         slog.Default(),
	}

	// 4. HTTP API
	a.server = server.NewServer(client, p, server.Options{
		Port: cfg.Server.Port,
		Menu: cfg.Menu,
		Now:  a.Now,
	})

	return a, nil
}

// Client returns the sync client.
func (a *App) Client() *rpc.Client {
	return a.client
}

// Menu returns the configured menu.
func (a *App) Menu() domain.Menu {
	return a.cfg.Menu
}

// Now returns the current time in the shop's time zone.
func (a *App) Now() time.Time {
	return time.Now().In(a.loc)
}

// Start starts the HTTP server and background reporting. It does not block.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	go a.runStatusReporter(ctx)

	a.log.Info("Kasir started",
		"port", a.cfg.Server.Port,
		"transport", a.cfg.Endpoint.Transport,
		"cache", backendName(a.store),
	)
	return nil
}

// Stop stops the HTTP server and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping Kasir...")

	err := a.server.Stop(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the endpoint and Redis connections. One-shot commands call
// it instead of Stop.
func (a *App) Close() error {
	_ = a.provider.Close()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
			return err
		}
	}
	return nil
}

// backendName reports the cache actually in use, which is memory after a
// failed Redis connection whatever the config asked for.
func backendName(s rpc.Store) string {
	if _, ok := s.(*cache.RedisCache); ok {
		return "redis"
	}
	return "memory"
}

// runStatusReporter logs endpoint status transitions.
func (a *App) runStatusReporter(ctx context.Context) {
	ticker := time.NewTicker(statusReportInterval)
	defer ticker.Stop()

	last := rpc.StatusHealthy
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := a.provider.Monitor.GetStats()
			if stats.Status == last {
				slog.Debug("Endpoint status", "status", stats.Status, "requests_24h", stats.RequestsLast24Hours)
				continue
			}
			if stats.Status == rpc.StatusHealthy {
				a.log.Info("Endpoint recovered", "previous", last)
			} else {
				a.log.Warn("Endpoint status changed",
					"status", stats.Status,
					"retry_after", a.provider.Monitor.GetRetryAfter(),
					"usage_pct", stats.UsagePercentage,
				)
			}
			last = stats.Status
		}
	}
}
