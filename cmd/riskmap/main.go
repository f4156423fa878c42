package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/county-risk-map/internal/adapter/http"
	"github.com/couchcryptid/county-risk-map/internal/analytics"
	"github.com/couchcryptid/county-risk-map/internal/artifact"
	"github.com/couchcryptid/county-risk-map/internal/config"
	"github.com/couchcryptid/county-risk-map/internal/observability"
	"github.com/couchcryptid/county-risk-map/internal/riskmap"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	lookup, err := artifact.LoadJSON(cfg.RiskJSONPath)
	if err != nil {
		logger.Error("failed to load risk lookup", "path", cfg.RiskJSONPath, "error", err)
		os.Exit(1)
	}
	features, err := riskmap.LoadBoundaryFile(cfg.BoundaryPath, cfg.BoundaryNameProperty)
	if err != nil {
		logger.Error("failed to load boundaries", "path", cfg.BoundaryPath, "error", err)
		os.Exit(1)
	}

	layer := riskmap.NewLayer(features, lookup)
	metrics.LayerFeatures.Set(float64(layer.Len()))
	metrics.LayerJoinMisses.Set(float64(len(layer.Misses())))
	for tier, n := range artifact.TierCounts(lookup) {
		metrics.RegionsByTier.WithLabelValues(string(tier)).Set(float64(n))
	}
	if misses := layer.Misses(); len(misses) > 0 {
		logger.Warn("boundary features without risk data", "count", len(misses), "names", misses)
	}
	logger.Info("risk layer ready",
		"features", layer.Len(),
		"matched", layer.Matched(),
		"last_updated", lookup.Metadata.LastUpdated)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, err := newSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open analytics sink", "sink", cfg.AnalyticsSink, "error", err)
		os.Exit(1)
	}
	tracker := analytics.New(sink, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)

	api := httpadapter.NewAPI(lookup, layer, tracker, cfg.MainSiteURL, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, tracker, api, logger)

	// Start analytics delivery.
	tracker.Start(ctx)

	// Start HTTP server.
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
	if err := tracker.Close(); err != nil {
		logger.Error("analytics sink close error", "error", err)
	}

	logger.Info("shutdown complete")
}
