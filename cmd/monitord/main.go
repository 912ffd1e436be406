// Command monitord runs the water-level monitoring service: it consumes raw
// sample cycles from Kafka, derives heights, rates, and severities, serves
// the dashboard REST API, and publishes severity-increase alerts.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/floodwatch/water-level-service/internal/adapter/httpapi"
	kafkaadapter "github.com/floodwatch/water-level-service/internal/adapter/kafka"
	"github.com/floodwatch/water-level-service/internal/config"
	"github.com/floodwatch/water-level-service/internal/observability"
	"github.com/floodwatch/water-level-service/internal/pipeline"
	"github.com/floodwatch/water-level-service/internal/registry"
	"github.com/floodwatch/water-level-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	sensors, err := config.LoadSensors(cfg.SensorsFile)
	if err != nil {
		logger.Error("failed to load sensors", "error", err, "path", cfg.SensorsFile)
		os.Exit(1)
	}

	reg := registry.New()
	if err := reg.Seed(sensors); err != nil {
		logger.Error("failed to seed sensor registry", "error", err)
		os.Exit(1)
	}
	logger.Info("sensor registry seeded", "sensors", len(sensors))

	reader := kafkaadapter.NewReader(cfg, logger)
	alerts := kafkaadapter.NewPublisher(cfg, logger)

	p := pipeline.New(reg, store.New(), alerts, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, p, cfg.RecentLimit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx, reader); err != nil {
			logger.Error("ingestion loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := alerts.Close(); err != nil {
		logger.Error("kafka publisher close error", "error", err)
	}

	logger.Info("shutdown complete")
}
