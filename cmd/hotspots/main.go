// Command hotspots runs the hotspot generation engine: a cycle on startup,
// then one every HOTSPOT_INTERVAL and on each NATS request, with ops
// endpoints on HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/http"
	kafkaadapter "github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/kafka"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/mapbox"
	natsadapter "github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/nats"
	redisadapter "github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/redis"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/config"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/observability"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/pipeline"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/storage"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("hotspot engine failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	var opts []pipeline.Option

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		geocoder, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithGeocoder(geocoder))
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.RedisAddr != "" {
		rc, err := redisadapter.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rc.Close()
		opts = append(opts, pipeline.WithRunLock(
			redisadapter.NewRunLock(rc, redisadapter.DefaultLockKey, cfg.RunLockTTL, logger),
		))
		logger.Info("distributed run lock enabled", "addr", cfg.RedisAddr, "ttl", cfg.RunLockTTL)
	}

	if cfg.KafkaHotspotTopic != "" {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaHotspotTopic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithPublisher(publisher))
		logger.Info("partner feed enabled", "topic", cfg.KafkaHotspotTopic)
	}

	generator := pipeline.New(store, store, cfg.Hotspot, logger, metrics, opts...)
	scheduler := pipeline.NewScheduler(generator, cfg.Interval, logger)

	if cfg.NATSURL != "" {
		nc, err := natsadapter.Connect(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		trigger := natsadapter.NewTrigger(nc, cfg.NATSTriggerSubject, generator, pipeline.ErrRunInProgress, logger)
		if err := trigger.Start(); err != nil {
			return err
		}
		defer func() {
			if err := trigger.Stop(); err != nil {
				logger.Error("nats trigger stop error", "error", err)
			}
		}()
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, generator, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the generation schedule.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("generation cycle still running at shutdown deadline")
	}

	logger.Info("shutdown complete")
	return nil
}
