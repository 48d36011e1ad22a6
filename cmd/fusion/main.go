package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/planet-weather-fusion/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/planet-weather-fusion/internal/adapter/kafka"
	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/openmeteo"
	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/store"
	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/swapi"
	"github.com/couchcryptid/planet-weather-fusion/internal/config"
	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/couchcryptid/planet-weather-fusion/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []namedCloser
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Error("close error", "component", closers[i].name, "error", err)
			}
		}
	}()

	clock := clockwork.NewRealClock()

	fusionCache, err := newCache(ctx, cfg, clock, logger, &closers)
	if err != nil {
		logger.Error("failed to initialize cache", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}

	recordStore, err := newStore(ctx, cfg, logger, &closers)
	if err != nil {
		logger.Error("failed to initialize store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	var publisher domain.RecordPublisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaFusedTopic, logger)
		closers = append(closers, namedCloser{"kafka writer", writer})
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaFusedTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	registry := swapi.NewClient(cfg.SwapiBaseURL, cfg.SwapiTimeout, cfg.SwapiMaxCharacterID, metrics, logger)
	conditions := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.OpenMeteoTimeout, metrics, logger)

	fuser := pipeline.NewFuser(registry, conditions, fusionCache, metrics, logger,
		pipeline.WithClock(clock),
		pipeline.WithTTL(cfg.FusionCacheTTL),
	)
	svc := pipeline.NewService(fuser, recordStore, publisher, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

type namedCloser struct {
	name string
	io.Closer
}

func newCache(ctx context.Context, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, closers *[]namedCloser) (domain.Cache, error) {
	if cfg.CacheBackend == config.BackendRedis {
		client, err := connect(ctx, logger, "redis", func(ctx context.Context) (*redis.Client, error) {
			return cache.NewRedisClient(ctx, cfg.RedisURL)
		})
		if err != nil {
			return nil, err
		}
		c := cache.NewRedis(client, clock)
		*closers = append(*closers, namedCloser{"redis cache", c})
		logger.Info("redis cache enabled")
		return c, nil
	}
	logger.Info("in-memory cache enabled", "max_entries", cfg.CacheMaxEntries)
	return cache.NewMemory(cfg.CacheMaxEntries, clock), nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers *[]namedCloser) (domain.RecordStore, error) {
	if cfg.StoreBackend == config.BackendPostgres {
		db, err := connect(ctx, logger, "postgres", func(ctx context.Context) (*sql.DB, error) {
			return store.OpenPostgres(ctx, cfg.DatabaseURL)
		})
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(db)
		*closers = append(*closers, namedCloser{"postgres store", pg})
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		logger.Info("postgres store enabled")
		return pg, nil
	}
	logger.Info("in-memory store enabled")
	return store.NewMemory(), nil
}
