package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Analytics sink kinds accepted by ANALYTICS_SINK.
const (
	SinkNone     = "none"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
)

// Config holds all service and command settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Artifacts and geometry.
	RiskJSONPath         string
	RiskCSVPath          string
	BoundaryPath         string
	BoundaryNameProperty string
	MainSiteURL          string

	// Analytics delivery.
	AnalyticsSink       string
	AnalyticsDSN        string
	KafkaBrokers        []string
	KafkaAnalyticsTopic string

	// iNaturalist fetch.
	INatBaseURL      string
	INatTaxonID      int
	INatPlaceID      int
	INatPerPage      int
	INatMaxPages     int
	INatRequestDelay time.Duration
	INatTimeout      time.Duration

	RecentMonths      int
	HistoricalMonths  int
	ResolverCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		RiskJSONPath:         sharedcfg.EnvOrDefault("RISK_JSON_PATH", "data/iguana-risk-data.json"),
		RiskCSVPath:          sharedcfg.EnvOrDefault("RISK_CSV_PATH", "data/florida_iguana_risk_by_county.csv"),
		BoundaryPath:         sharedcfg.EnvOrDefault("BOUNDARY_PATH", "data/florida-counties.geojson"),
		BoundaryNameProperty: sharedcfg.EnvOrDefault("BOUNDARY_NAME_PROPERTY", "NAME"),
		MainSiteURL:          sharedcfg.EnvOrDefault("MAIN_SITE_URL", "https://iguanaremovalpros.com"),

		AnalyticsSink:       sharedcfg.EnvOrDefault("ANALYTICS_SINK", SinkNone),
		AnalyticsDSN:        sharedcfg.EnvOrDefault("ANALYTICS_DSN", ""),
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAnalyticsTopic: sharedcfg.EnvOrDefault("KAFKA_ANALYTICS_TOPIC", "riskmap-analytics"),

		INatBaseURL: sharedcfg.EnvOrDefault("INAT_BASE_URL", "https://api.inaturalist.org/v1"),
	}

	ints := []struct {
		name string
		def  int
		dst  *int
	}{
		{"INAT_TAXON_ID", 35190, &cfg.INatTaxonID},
		{"INAT_PLACE_ID", 28, &cfg.INatPlaceID},
		{"INAT_PER_PAGE", 200, &cfg.INatPerPage},
		{"INAT_MAX_PAGES", 10, &cfg.INatMaxPages},
		{"RECENT_MONTHS", 12, &cfg.RecentMonths},
		{"HISTORICAL_MONTHS", 36, &cfg.HistoricalMonths},
		{"RESOLVER_CACHE_SIZE", 1000, &cfg.ResolverCacheSize},
	}
	for _, v := range ints {
		n, err := parsePositiveInt(v.name, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	if cfg.INatRequestDelay, err = parseDuration("INAT_REQUEST_DELAY", "1s", true); err != nil {
		return nil, err
	}
	if cfg.INatTimeout, err = parseDuration("INAT_TIMEOUT", "30s", false); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.INatPerPage > 200 {
		return errors.New("INAT_PER_PAGE must be at most 200")
	}
	if c.HistoricalMonths < c.RecentMonths {
		return errors.New("HISTORICAL_MONTHS must not be shorter than RECENT_MONTHS")
	}
	if u, err := url.Parse(c.INatBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("invalid INAT_BASE_URL")
	}
	if u, err := url.Parse(c.MainSiteURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("invalid MAIN_SITE_URL")
	}

	switch c.AnalyticsSink {
	case SinkNone:
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when ANALYTICS_SINK=kafka")
		}
		if c.KafkaAnalyticsTopic == "" {
			return errors.New("KAFKA_ANALYTICS_TOPIC is required when ANALYTICS_SINK=kafka")
		}
	case SinkPostgres, SinkSQLite:
		if c.AnalyticsDSN == "" {
			return fmt.Errorf("ANALYTICS_DSN is required when ANALYTICS_SINK=%s", c.AnalyticsSink)
		}
	default:
		return fmt.Errorf("invalid ANALYTICS_SINK %q: want none, kafka, postgres or sqlite", c.AnalyticsSink)
	}
	return nil
}

func parsePositiveInt(name string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(name, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}

func parseDuration(name, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}
