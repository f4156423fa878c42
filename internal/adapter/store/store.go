// Package store persists analytics events to the shared analytics tables on
// PostgreSQL or SQLite through database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/analytics"
	"github.com/couchcryptid/county-risk-map/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const pingTimeout = 2 * time.Second

// Table names shared with the main site's analytics schema.
const (
	TablePageViews       = "analytics_page_views"
	TableCTAClicks       = "analytics_cta_clicks"
	TableMapInteractions = "analytics_map_interactions"
)

type dialect struct {
	driver   string
	idType   string
	timeType string
	// numbered placeholders ($1, $2) instead of "?".
	numbered bool
}

var dialects = map[string]dialect{
	config.SinkPostgres: {driver: "pgx", idType: "UUID", timeType: "TIMESTAMPTZ", numbered: true},
	config.SinkSQLite:   {driver: "sqlite", idType: "TEXT", timeType: "TIMESTAMP"},
}

// Store writes analytics events to SQL tables. It implements analytics.Sink.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

// Open connects to the database for the given sink kind and verifies the
// connection with a ping.
func Open(ctx context.Context, kind, dsn string, logger *slog.Logger) (*Store, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("unsupported analytics store %q", kind)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == "sqlite" {
		// SQLite allows one writer; serialize on a single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.driver, err)
	}

	logger.Info("analytics store connected", "driver", d.driver)
	return &Store{db: db, dialect: d, logger: logger}, nil
}

// Migrate creates the analytics tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate analytics schema: %w", err)
		}
	}
	return nil
}

func (s *Store) schema() []string {
	id, ts := s.dialect.idType, s.dialect.timeType
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + TablePageViews + ` (
			id ` + id + ` PRIMARY KEY,
			page TEXT NOT NULL,
			county TEXT,
			source TEXT NOT NULL,
			"timestamp" ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableCTAClicks + ` (
			id ` + id + ` PRIMARY KEY,
			cta_type TEXT NOT NULL,
			county TEXT,
			utm_campaign TEXT,
			source TEXT NOT NULL,
			"timestamp" ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableMapInteractions + ` (
			id ` + id + ` PRIMARY KEY,
			county TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			source TEXT NOT NULL,
			"timestamp" ` + ts + ` NOT NULL
		)`,
	}
}

// WriteEvents inserts a batch in one transaction. An event of unknown kind
// fails the whole batch.
func (s *Store) WriteEvents(ctx context.Context, events []analytics.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analytics tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range events {
		query, args, err := s.insert(events[i])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s event %s: %w", events[i].Kind, events[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analytics tx: %w", err)
	}
	s.logger.Debug("analytics events stored", "count", len(events))
	return nil
}

func (s *Store) insert(e analytics.Event) (string, []any, error) {
	var (
		query string
		args  []any
	)
	switch e.Kind {
	case analytics.KindPageView:
		query = `INSERT INTO ` + TablePageViews + ` (id, page, county, source, "timestamp") VALUES (?, ?, ?, ?, ?)`
		args = []any{e.ID.String(), e.Page, nullable(e.County), e.Source, e.Timestamp}
	case analytics.KindCTAClick:
		query = `INSERT INTO ` + TableCTAClicks + ` (id, cta_type, county, utm_campaign, source, "timestamp") VALUES (?, ?, ?, ?, ?, ?)`
		args = []any{e.ID.String(), e.CTAType, nullable(e.County), nullable(e.UTMCampaign), e.Source, e.Timestamp}
	case analytics.KindMapInteraction:
		query = `INSERT INTO ` + TableMapInteractions + ` (id, county, risk_level, source, "timestamp") VALUES (?, ?, ?, ?, ?)`
		args = []any{e.ID.String(), e.County, e.RiskLevel, e.Source, e.Timestamp}
	default:
		return "", nil, fmt.Errorf("unknown analytics event kind %q", e.Kind)
	}
	return s.rebind(query), args, nil
}

// Count returns the number of rows in an analytics table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case TablePageViews, TableCTAClicks, TableMapInteractions:
	default:
		return 0, fmt.Errorf("unknown analytics table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites "?" placeholders for drivers that use numbered ones.
func (s *Store) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
