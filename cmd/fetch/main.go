// Command fetch regenerates the county risk artifacts from iNaturalist.
// It fetches research-grade observations for the configured window,
// aggregates and classifies them per county, writes the CSV and rebuilds the
// JSON lookup from it. A failed run leaves the previous artifacts in place.
//
// Usage:
//
//	RISK_CSV_PATH=data/florida_iguana_risk_by_county.csv \
//	RISK_JSON_PATH=data/iguana-risk-data.json \
//	go run ./cmd/fetch
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/county-risk-map/internal/adapter/inaturalist"
	"github.com/couchcryptid/county-risk-map/internal/config"
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/observability"
	"github.com/couchcryptid/county-risk-map/internal/pipeline"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := inaturalist.NewClient(cfg, metrics, logger)
	resolver := pipeline.NewCachedResolver(domain.ScanResolver{}, cfg.ResolverCacheSize, metrics)
	writer := pipeline.FileWriter{CSVPath: cfg.RiskCSVPath, JSONPath: cfg.RiskJSONPath}

	g := pipeline.New(client, resolver, writer, logger, metrics, pipeline.Options{
		RecentMonths:     cfg.RecentMonths,
		HistoricalMonths: cfg.HistoricalMonths,
	})

	summary, err := g.Run(ctx)
	if err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("artifacts written",
		"csv", cfg.RiskCSVPath,
		"json", cfg.RiskJSONPath,
		"duration", summary.Duration)
}
