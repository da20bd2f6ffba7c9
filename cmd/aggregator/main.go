// Command aggregator runs one prediction-data aggregation pass: it scans the
// trailing window of daily traffic, computes the minimum daily pageview
// count per site, and overwrites the metrics cache. Scheduling (typically a
// daily cron) is external.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/config"
	"github.com/patrickwarner/adinventory/internal/db"
	"github.com/patrickwarner/adinventory/internal/inventory"
	"github.com/patrickwarner/adinventory/internal/observability"
	"github.com/patrickwarner/adinventory/internal/traffic"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("aggregation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observability.RegisterMetrics(prometheus.DefaultRegisterer)

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	trafficStore, err := traffic.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer trafficStore.Close()

	cache, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer cache.Close()

	// The aggregation pass never touches the campaign store.
	est := &inventory.Estimator{
		Traffic:    trafficStore,
		Cache:      cache,
		Logger:     logger,
		WindowDays: cfg.WindowDays,
	}

	return est.UpdatePredictionData(ctx)
}
