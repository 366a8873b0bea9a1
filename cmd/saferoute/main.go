package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/hazardapi"
	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/saferoute-scoring-service/internal/adapter/kafka"
	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/mapbox"
	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/valkey"
	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/config"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/engine"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	"github.com/couchcryptid/saferoute-scoring-service/internal/pipeline"
	"github.com/couchcryptid/saferoute-scoring-service/internal/registry"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

const (
	sessionIdleTTL     = 30 * time.Minute
	sessionSweepPeriod = time.Minute
	publishQueueSize   = 1024
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hazard source: external API when configured, otherwise the in-process registry.
	reg := registry.New(clock)
	var source catalog.Source = reg
	if cfg.HazardSourceURL != "" {
		source = hazardapi.NewClient(cfg.HazardSourceURL, cfg.HazardSourceTimeout, logger)
		logger.Info("external hazard source enabled", "url", cfg.HazardSourceURL, "timeout", cfg.HazardSourceTimeout)
	} else {
		logger.Info("using in-process hazard registry")
	}

	checks := []sharedobs.ReadinessChecker{}

	var cache *valkey.Cache
	if cfg.HazardCacheAddr != "" {
		cache, err = valkey.New(cfg.HazardCacheAddr)
		if err != nil {
			logger.Error("failed to connect hazard cache", "error", err)
			os.Exit(1)
		}
		source = catalog.NewCachedSource(source, cache, cfg.HazardCacheTTL, logger)
		checks = append(checks, cache)
		logger.Info("hazard snapshot cache enabled", "addr", cfg.HazardCacheAddr, "ttl", cfg.HazardCacheTTL)
	}

	cat := catalog.New(source, catalog.NewGenerator(cfg.SyntheticSeed), cfg.HazardSourceTimeout, logger, metrics)

	// Route set events (feature-flagged via KAFKA_ENABLED).
	var publisher engine.Publisher
	var writer *kafkaadapter.Writer
	var p *pipeline.Pipeline
	if cfg.KafkaEnabled {
		queue := pipeline.NewQueue(publishQueueSize, cfg.BatchFlushInterval, logger, metrics)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(queue, pipeline.NewTransformer(), writer, logger, metrics, cfg.BatchSize)
		publisher = queue
		checks = append(checks, p)
		logger.Info("route set publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("route set publishing disabled")
	}

	// Place search (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var places domain.PlaceSearcher
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		places = mapbox.NewCachedSearcher(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox place search enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox place search disabled")
	}

	eng := engine.New(cat, cfg.HazardWindowHours, publisher, clock, logger, metrics)
	sessions := engine.NewSessions(eng, clock, sessionIdleTTL, metrics)
	api := httpadapter.NewAPI(eng, sessions, reg, places, cfg.HazardWindowHours, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, api, observability.AllReady(checks...), logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start publisher.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	}

	go sessions.RunSweeper(ctx, sessionSweepPeriod)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if cache != nil {
		cache.Close()
	}

	logger.Info("shutdown complete")
}
