package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	icache "ChartPull/internal/cache"
	"ChartPull/internal/domain/repository"
	"ChartPull/internal/handler/api"
	internalrepo "ChartPull/internal/repository"
	"ChartPull/internal/usecase"
	pkgch "ChartPull/pkg/clickhouse"
	"ChartPull/pkg/config"
	xhttp "ChartPull/pkg/http"
	applogger "ChartPull/pkg/logger"
	"ChartPull/pkg/metrics"
	pkgpg "ChartPull/pkg/postgres"
	pkgredis "ChartPull/pkg/redis"
	"ChartPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{"CREATE DATABASE IF NOT EXISTS chartpull"}
	for _, t := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w", "1mo"} {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS chartpull.rt_candles_%s (entity String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (entity, bucket)", t))
	}
	stmts = append(stmts,
		"CREATE TABLE IF NOT EXISTS chartpull.rt_samples_1m (entity String, name String, bucket DateTime, value Float64) ENGINE=MergeTree ORDER BY (entity, name, bucket)")

	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvidePostgresClient creates the metadata catalog client.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithHost(cfg.Postgres.Host),
		pkgpg.WithPort(cfg.Postgres.Port),
		pkgpg.WithDatabase(cfg.Postgres.Database),
		pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		pkgpg.WithMaxConnections(cfg.Postgres.MaxConns, 2),
		pkgpg.WithDialTimeout(cfg.Postgres.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates the optional shared metadata cache. Returns nil
// when disabled; downstream consumers treat nil as "no shared cache".
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rdb, err := pkgredis.NewClient(pkgredis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return rdb, nil
}

// ProvideCandleRepository creates the ClickHouse candle and sample reader.
func ProvideCandleRepository(ch *pkgch.Client, l *applogger.Logger) *internalrepo.CHCandleStore {
	return internalrepo.NewCHCandleStore(ch, l)
}

// ProvideCandleStore exposes the candle reading interface.
func ProvideCandleStore(s *internalrepo.CHCandleStore) repository.CandleStore {
	return s
}

// ProvideSampleStore exposes the raw sample reading interface.
func ProvideSampleStore(s *internalrepo.CHCandleStore) repository.SampleStore {
	return s
}

// ProvideMetadataStore creates the Postgres catalog, wrapped with the Redis
// cache when one is configured.
func ProvideMetadataStore(pg *pkgpg.Client, rdb *redis.Client, l *applogger.Logger) repository.MetadataStore {
	base := internalrepo.NewPGMetadataStore(pg, l)
	if rdb == nil {
		return base
	}
	return internalrepo.NewCachingMetadataStore(rdb, 5*time.Minute, base)
}

// ProvideCacheIndex creates the in-process cache index.
func ProvideCacheIndex(cfg *config.Config) *icache.Index {
	return icache.NewIndex(icache.Config{
		ResultCapacity: cfg.History.ResultCapacity,
		EntityCapacity: cfg.History.EntityCapacity,
	})
}

// ProvideHistoryUseCase creates the query router.
func ProvideHistoryUseCase(
	candles repository.CandleStore,
	samples repository.SampleStore,
	metadata repository.MetadataStore,
	idx *icache.Index,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(candles, samples, metadata, idx, m, l, usecase.Config{
		ResolveTimeout:  cfg.History.ResolveTimeout,
		PrimaryTimeout:  cfg.History.PrimaryTimeout,
		FallbackTimeout: cfg.History.FallbackTimeout,
	})
}

// ProvideHTTPHandler creates the route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.HistoryUseCase,
	candles repository.CandleStore,
	metadata repository.MetadataStore,
) xhttp.Handler {
	return api.NewHistoryEchoHandler(l, uc, candles, metadata)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		opts = append(opts, xhttp.WithRateLimit(rl.Capacity, rl.RefillPerSec))
	}
	return xhttp.NewServer(l, h, opts...)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	ch *pkgch.Client,
	pg *pkgpg.Client,
	rdb *redis.Client,
) *server.App {
	return server.New(cfg, l, httpServer, ch, pg, rdb)
}
