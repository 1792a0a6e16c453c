// Package app assembles the registry client, lookup cache and resolver from
// configuration. Both the HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"companygraph/internal/companygraph"
	"companygraph/internal/companygraph/handler"
	graphmetrics "companygraph/internal/companygraph/metrics"
	httpapi "companygraph/internal/http"
	"companygraph/internal/platform/config"
	platformmetrics "companygraph/internal/platform/metrics"
	platformredis "companygraph/internal/platform/redis"
	"companygraph/internal/registry/cache"
	"companygraph/internal/registry/client"
	registrymetrics "companygraph/internal/registry/metrics"
	"companygraph/pkg/platform/circuit"
)

const inMemoryCacheEntries = 10000

// App owns the long-lived dependencies of the process.
type App struct {
	Resolver *companygraph.Resolver

	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	redis    *platformredis.Client
}

// New connects to Redis when configured and wires the resolver. reg receives
// every module's metrics.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (*App, error) {
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	regMetrics := registrymetrics.New(reg)
	breaker := circuit.New(client.ProviderID,
		circuit.WithFailureThreshold(cfg.Registry.BreakerFailures),
		circuit.WithCooldown(cfg.Registry.BreakerCooldown),
	)
	gcis := client.NewGCIS(cfg.Registry.BaseURL,
		client.WithCallTimeout(cfg.Registry.CallTimeout),
		client.WithRetries(cfg.Registry.MaxRetries, client.DefaultInitialBackoff),
		client.WithPageSize(cfg.Registry.PageSize),
		client.WithBreaker(breaker),
		client.WithMetrics(regMetrics),
		client.WithLogger(logger),
	)

	var fetcher client.Fetcher = gcis
	if cfg.Registry.LookupCacheTTL > 0 {
		var store cache.Store
		if redisClient != nil {
			store = cache.NewRedisStore(redisClient.Client)
			logger.Info("lookup cache backed by redis", "ttl", cfg.Registry.LookupCacheTTL)
		} else {
			store = cache.NewInMemoryStore(inMemoryCacheEntries)
			logger.Info("lookup cache in memory", "ttl", cfg.Registry.LookupCacheTTL)
		}
		fetcher = cache.NewFetcher(gcis, store, cfg.Registry.LookupCacheTTL, regMetrics, logger)
	}
	registry := client.NewRegistry(fetcher)

	graphMetrics := graphmetrics.New(reg)
	engine := companygraph.NewEngine(registry,
		companygraph.WithJuristicFanOut(cfg.Resolver.JuristicFanOut),
		companygraph.WithNegativeCaching(cfg.Resolver.CacheNegativeLookups),
		companygraph.WithEngineMetrics(graphMetrics),
		companygraph.WithEngineLogger(logger),
	)
	resolver := companygraph.NewResolver(registry, engine,
		companygraph.WithTimeout(cfg.Resolver.Timeout),
		companygraph.WithResolverMetrics(graphMetrics),
		companygraph.WithResolverLogger(logger),
	)

	return &App{
		Resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		redis:    redisClient,
	}, nil
}

// Router builds the public HTTP router.
func (a *App) Router() http.Handler {
	deps := httpapi.RouterDeps{
		Logger:         a.logger,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Metrics:        platformmetrics.Handler(a.registry),
		Modules:        []httpapi.Registrar{handler.New(a.Resolver, a.logger)},
	}
	if a.redis != nil {
		deps.Health = a.redis
	}
	return httpapi.NewRouter(deps)
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}
