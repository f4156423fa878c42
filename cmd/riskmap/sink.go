package main

import (
	"context"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/county-risk-map/internal/adapter/kafka"
	"github.com/couchcryptid/county-risk-map/internal/adapter/store"
	"github.com/couchcryptid/county-risk-map/internal/analytics"
	"github.com/couchcryptid/county-risk-map/internal/config"
)

// newSink opens the analytics sink selected by ANALYTICS_SINK.
func newSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (analytics.Sink, error) {
	switch cfg.AnalyticsSink {
	case config.SinkKafka:
		logger.Info("analytics sink: kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAnalyticsTopic)
		return kafkaadapter.NewWriter(cfg, logger), nil
	case config.SinkPostgres, config.SinkSQLite:
		s, err := store.Open(ctx, cfg.AnalyticsSink, cfg.AnalyticsDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		logger.Info("analytics sink disabled")
		return analytics.NopSink{}, nil
	}
}
