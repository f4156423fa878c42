package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "riskmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// generation pipeline, the map service and analytics tracking.
type Metrics struct {
	// Generation pipeline.
	ObservationsFetched prometheus.Counter
	ObservationsMatched prometheus.Counter
	ObservationsDropped prometheus.Counter
	FetchPages          prometheus.Counter
	FetchErrors         prometheus.Counter
	FetchDuration       prometheus.Histogram
	ResolverCache       *prometheus.CounterVec // labels: result={hit,miss}
	RegionsByTier       *prometheus.GaugeVec   // labels: tier

	// Map service.
	LayerFeatures   prometheus.Gauge
	LayerJoinMisses prometheus.Gauge

	// Analytics.
	AnalyticsTracked     *prometheus.CounterVec // labels: kind={page_view,cta_click,map_interaction}
	AnalyticsDropped     prometheus.Counter
	AnalyticsWriteErrors prometheus.Counter
	AnalyticsBatchSize   prometheus.Histogram
	TrackerRunning       prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_fetched_total",
			Help:      "Observations returned by the upstream API.",
		}),
		ObservationsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_matched_total",
			Help:      "Observations attributed to a county.",
		}),
		ObservationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_dropped_total",
			Help:      "Observations whose place text named no county.",
		}),
		FetchPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_pages_total",
			Help:      "Upstream result pages fetched.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed upstream page requests.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_request_duration_seconds",
			Help:      "Upstream page request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ResolverCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_cache_total",
			Help:      "County resolver cache lookups by result.",
		}, []string{"result"}),
		RegionsByTier: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_by_tier",
			Help:      "Counties per risk tier in the latest artifact.",
		}, []string{"tier"}),
		LayerFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layer_features",
			Help:      "Boundary features in the served layer.",
		}),
		LayerJoinMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layer_join_misses",
			Help:      "Boundary features without a risk record.",
		}),
		AnalyticsTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_tracked_total",
			Help:      "Analytics events accepted for delivery by kind.",
		}, []string{"kind"}),
		AnalyticsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_dropped_total",
			Help:      "Analytics events dropped because the buffer was full or the tracker closed.",
		}),
		AnalyticsWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_write_errors_total",
			Help:      "Failed analytics batch writes.",
		}),
		AnalyticsBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analytics_batch_size",
			Help:      "Events per analytics batch written to the sink.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		TrackerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "analytics_tracker_running",
			Help:      "1 when the analytics tracker is active, 0 when shut down.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ObservationsFetched,
		m.ObservationsMatched,
		m.ObservationsDropped,
		m.FetchPages,
		m.FetchErrors,
		m.FetchDuration,
		m.ResolverCache,
		m.RegionsByTier,
		m.LayerFeatures,
		m.LayerJoinMisses,
		m.AnalyticsTracked,
		m.AnalyticsDropped,
		m.AnalyticsWriteErrors,
		m.AnalyticsBatchSize,
		m.TrackerRunning,
	}
}
