// Command gribmetad runs the streaming translation service: it consumes raw
// section documents from Kafka, translates them into metadata records, and
// publishes the records to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/gribmeta/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/gribmeta/internal/adapter/kafka"
	"github.com/couchcryptid/gribmeta/internal/adapter/paramdb"
	"github.com/couchcryptid/gribmeta/internal/config"
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	opts := grib.Options{
		WarnOnUnsupported:     cfg.WarnOnUnsupported,
		SupportHindcastValues: cfg.SupportHindcastValues,
	}

	// Initialize the parameter registry (feature-flagged via REGISTRY_ENABLED / REGISTRY_URL).
	var resolver pipeline.ParamResolver
	if cfg.RegistryEnabled {
		client := paramdb.NewClient(cfg.RegistryURL, cfg.RegistryTimeout, metrics, logger)
		resolver = paramdb.NewCachedResolver(client, cfg.RegistryCacheTTL, metrics)
		metrics.RegistryEnabled.Set(1)
		logger.Info("parameter registry enabled", "url", cfg.RegistryURL, "cache_ttl", cfg.RegistryCacheTTL)
	} else {
		logger.Info("parameter registry disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(opts, resolver, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, opts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start translation pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
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
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
