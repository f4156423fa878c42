package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.Equal(t, "data/iguana-risk-data.json", cfg.RiskJSONPath)
	assert.Equal(t, "data/florida_iguana_risk_by_county.csv", cfg.RiskCSVPath)
	assert.Equal(t, "data/florida-counties.geojson", cfg.BoundaryPath)
	assert.Equal(t, "NAME", cfg.BoundaryNameProperty)
	assert.Equal(t, "https://iguanaremovalpros.com", cfg.MainSiteURL)

	assert.Equal(t, SinkNone, cfg.AnalyticsSink)
	assert.Empty(t, cfg.AnalyticsDSN)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "riskmap-analytics", cfg.KafkaAnalyticsTopic)

	assert.Equal(t, "https://api.inaturalist.org/v1", cfg.INatBaseURL)
	assert.Equal(t, 35190, cfg.INatTaxonID)
	assert.Equal(t, 28, cfg.INatPlaceID)
	assert.Equal(t, 200, cfg.INatPerPage)
	assert.Equal(t, 10, cfg.INatMaxPages)
	assert.Equal(t, time.Second, cfg.INatRequestDelay)
	assert.Equal(t, 30*time.Second, cfg.INatTimeout)
	assert.Equal(t, 12, cfg.RecentMonths)
	assert.Equal(t, 36, cfg.HistoricalMonths)
	assert.Equal(t, 1000, cfg.ResolverCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("RISK_JSON_PATH", "/srv/risk.json")
	t.Setenv("BOUNDARY_NAME_PROPERTY", "county")
	t.Setenv("MAIN_SITE_URL", "https://example.test")
	t.Setenv("ANALYTICS_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ANALYTICS_TOPIC", "custom-analytics")
	t.Setenv("INAT_MAX_PAGES", "3")
	t.Setenv("INAT_REQUEST_DELAY", "0s")
	t.Setenv("RECENT_MONTHS", "6")
	t.Setenv("HISTORICAL_MONTHS", "24")
	t.Setenv("RESOLVER_CACHE_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "/srv/risk.json", cfg.RiskJSONPath)
	assert.Equal(t, "county", cfg.BoundaryNameProperty)
	assert.Equal(t, "https://example.test", cfg.MainSiteURL)
	assert.Equal(t, SinkKafka, cfg.AnalyticsSink)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-analytics", cfg.KafkaAnalyticsTopic)
	assert.Equal(t, 3, cfg.INatMaxPages)
	assert.Equal(t, time.Duration(0), cfg.INatRequestDelay)
	assert.Equal(t, 6, cfg.RecentMonths)
	assert.Equal(t, 24, cfg.HistoricalMonths)
	assert.Equal(t, 50, cfg.ResolverCacheSize)
}

func TestLoad_SQLSinks(t *testing.T) {
	for _, sink := range []string{SinkPostgres, SinkSQLite} {
		t.Run(sink, func(t *testing.T) {
			t.Setenv("ANALYTICS_SINK", sink)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ANALYTICS_DSN")

			t.Setenv("ANALYTICS_DSN", "file:analytics.db")
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, "file:analytics.db", cfg.AnalyticsDSN)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"batch size", map[string]string{"BATCH_SIZE": "0"}, "BATCH_SIZE"},
		{"batch size too large", map[string]string{"BATCH_SIZE": "9999"}, "BATCH_SIZE"},
		{"flush interval", map[string]string{"BATCH_FLUSH_INTERVAL": "not-a-duration"}, "BATCH_FLUSH_INTERVAL"},
		{"sink", map[string]string{"ANALYTICS_SINK": "supabase"}, "ANALYTICS_SINK"},
		{"taxon", map[string]string{"INAT_TAXON_ID": "iguana"}, "INAT_TAXON_ID"},
		{"per page zero", map[string]string{"INAT_PER_PAGE": "0"}, "INAT_PER_PAGE"},
		{"per page too large", map[string]string{"INAT_PER_PAGE": "500"}, "INAT_PER_PAGE"},
		{"max pages", map[string]string{"INAT_MAX_PAGES": "-2"}, "INAT_MAX_PAGES"},
		{"request delay", map[string]string{"INAT_REQUEST_DELAY": "soon"}, "INAT_REQUEST_DELAY"},
		{"timeout zero", map[string]string{"INAT_TIMEOUT": "0s"}, "INAT_TIMEOUT"},
		{"windows", map[string]string{"RECENT_MONTHS": "24", "HISTORICAL_MONTHS": "12"}, "HISTORICAL_MONTHS"},
		{"base url", map[string]string{"INAT_BASE_URL": "not a url"}, "INAT_BASE_URL"},
		{"site url", map[string]string{"MAIN_SITE_URL": "/relative"}, "MAIN_SITE_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
