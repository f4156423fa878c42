// Package artifact builds, reads and writes the risk artifacts: the
// human-editable CSV that is the source of truth, and the JSON lookup the map
// consumes.
package artifact

import (
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// generatedAtLayout matches ISO 8601 with millisecond precision in UTC.
const generatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// BuildLookup keys records by normalized county name over the full fixed
// region set. Counties without a record default to an unclassified Minimal
// record; records for names outside the set are ignored. Colors are derived
// from tiers.
func BuildLookup(records map[string]domain.RiskRecord, generatedAt time.Time) *domain.RiskLookup {
	byFold := make(map[string]domain.RiskRecord, len(records))
	for name, rec := range records {
		byFold[domain.FoldKey(name)] = rec
	}

	lookup := &domain.RiskLookup{
		Counties: make(map[string]domain.RiskRecord, len(domain.FloridaCounties)),
	}
	for _, county := range domain.FloridaCounties {
		rec, ok := byFold[domain.FoldKey(county)]
		if !ok {
			rec = defaultRecord()
		}
		rec.Color = rec.Tier.Color()
		lookup.Counties[domain.Normalize(county)] = rec
	}

	lookup.Metadata = buildMetadata(lookup.Counties, generatedAt)
	lookup.Index()
	return lookup
}

// defaultRecord is what a county with no observations classifies to.
func defaultRecord() domain.RiskRecord {
	return domain.Classify(domain.RegionStats{})
}

func buildMetadata(counties map[string]domain.RiskRecord, generatedAt time.Time) domain.LookupMetadata {
	var latest string
	var nonEmpty int
	for _, rec := range counties {
		if rec.Tier != "" {
			nonEmpty++
		}
		if rec.LastUpdated > latest {
			latest = rec.LastUpdated
		}
	}
	return domain.LookupMetadata{
		LastUpdated:   latest,
		TotalCounties: nonEmpty,
		GeneratedAt:   generatedAt.UTC().Format(generatedAtLayout),
	}
}

// TierCounts tallies lookup entries per tier.
func TierCounts(lookup *domain.RiskLookup) map[domain.Tier]int {
	counts := make(map[domain.Tier]int, 4)
	for _, rec := range lookup.Counties {
		counts[rec.Tier]++
	}
	return counts
}
