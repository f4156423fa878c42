// Package pipeline runs the offline generation of the risk artifacts:
// fetch observations, aggregate them per county, classify, write the CSV and
// regenerate the JSON lookup from it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/observability"
)

// ObservationSource fetches observations dated between from and to.
type ObservationSource interface {
	FetchObservations(ctx context.Context, from, to time.Time) ([]domain.Observation, error)
}

// ArtifactWriter persists classified records and returns the lookup that
// was published.
type ArtifactWriter interface {
	WriteArtifacts(ctx context.Context, records map[string]domain.RiskRecord, generatedAt time.Time) (*domain.RiskLookup, error)
}

// Options sets the aggregation windows.
type Options struct {
	RecentMonths     int
	HistoricalMonths int
}

// Summary reports one generation run.
type Summary struct {
	Observations int
	Matched      int
	Dropped      int
	Tiers        map[domain.Tier]int
	LastUpdated  string
	Duration     time.Duration
}

// Generator orchestrates the fetch-aggregate-classify-write run.
type Generator struct {
	source   ObservationSource
	resolver domain.RegionResolver
	writer   ArtifactWriter
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
}

// New creates a Generator. A nil resolver uses the substring scan.
func New(source ObservationSource, resolver domain.RegionResolver, writer ArtifactWriter, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Generator {
	if resolver == nil {
		resolver = domain.ScanResolver{}
	}
	if opts.RecentMonths <= 0 {
		opts.RecentMonths = domain.DefaultRecentMonths
	}
	if opts.HistoricalMonths < opts.RecentMonths {
		opts.HistoricalMonths = 3 * opts.RecentMonths
	}
	return &Generator{
		source:   source,
		resolver: resolver,
		writer:   writer,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// Run executes one generation. Any fetch, parse or write failure aborts the
// run; nothing is published unless every stage succeeded.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	start := domain.Now()
	ref := start.UTC()
	from := ref.AddDate(0, -g.opts.HistoricalMonths, 0)

	g.logger.Info("generation started",
		"from", from.Format(time.DateOnly), "to", ref.Format(time.DateOnly),
		"recent_months", g.opts.RecentMonths)

	observations, err := g.source.FetchObservations(ctx, from, ref)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch observations: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	agg := domain.AggregateWith(observations, ref, g.resolver, g.opts.RecentMonths)
	g.metrics.ObservationsMatched.Add(float64(agg.Matched))
	g.metrics.ObservationsDropped.Add(float64(agg.Dropped))

	records := domain.ClassifyAll(agg.Stats)
	if len(records) != len(domain.FloridaCounties) {
		return Summary{}, errors.New("classification did not cover every county")
	}

	lookup, err := g.writer.WriteArtifacts(ctx, records, domain.Now())
	if err != nil {
		return Summary{}, fmt.Errorf("write artifacts: %w", err)
	}

	summary := Summary{
		Observations: len(observations),
		Matched:      agg.Matched,
		Dropped:      agg.Dropped,
		Tiers:        make(map[domain.Tier]int, 4),
		LastUpdated:  lookup.Metadata.LastUpdated,
		Duration:     domain.Now().Sub(start),
	}
	for _, rec := range lookup.Counties {
		summary.Tiers[rec.Tier]++
	}
	for _, info := range domain.Tiers() {
		g.metrics.RegionsByTier.WithLabelValues(string(info.Label)).Set(float64(summary.Tiers[info.Label]))
	}

	g.logger.Info("generation complete",
		"observations", summary.Observations,
		"matched", summary.Matched,
		"dropped", summary.Dropped,
		"high", summary.Tiers[domain.TierHigh],
		"medium", summary.Tiers[domain.TierMedium],
		"low", summary.Tiers[domain.TierLow],
		"minimal", summary.Tiers[domain.TierMinimal],
		"last_updated", summary.LastUpdated,
	)
	return summary, nil
}
