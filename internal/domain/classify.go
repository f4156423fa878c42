package domain

import "time"

// Data source labels recorded on each RiskRecord.
const (
	SourceINaturalist = "iNaturalist"
	SourceFWC         = "FWC"
)

// monthLayout is the "YYYY-MM" layout used for buckets and lastUpdated.
const monthLayout = "2006-01"

// MonthKey formats t as "YYYY-MM" in UTC. The zero time yields "".
func MonthKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(monthLayout)
}

// Classify maps county statistics to a risk record using the built-in rule
// table. It is total: every RegionStats, including all zeros, yields exactly
// one tier.
func Classify(stats RegionStats) RiskRecord {
	return ClassifyWith(defaultRules, stats)
}

// ClassifyWith evaluates table top to bottom and applies the first matching
// rule. When nothing matches (only possible with negative counts) the last
// row applies.
func ClassifyWith(table []Rule, stats RegionStats) RiskRecord {
	rule := table[len(table)-1]
	for _, r := range table {
		if r.Matches(stats) {
			rule = r
			break
		}
	}

	source := SourceFWC
	if stats.Total > 0 {
		source = SourceINaturalist
	}

	return RiskRecord{
		Tier:         rule.Tier,
		Rationale:    rule.Explain(stats),
		Source:       source,
		LastUpdated:  MonthKey(stats.AsOf),
		Color:        rule.Tier.Color(),
		TriggerCount: rule.Count(stats),
	}
}

// ClassifyAll classifies every county's statistics, keyed by county name.
func ClassifyAll(stats []RegionStats) map[string]RiskRecord {
	out := make(map[string]RiskRecord, len(stats))
	for _, s := range stats {
		out[s.Region] = Classify(s)
	}
	return out
}
