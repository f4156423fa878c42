package domain

import (
	"slices"
	"time"
)

// Observation is a single sighting as delivered by the upstream source.
type Observation struct {
	ID         int64     `json:"id"`
	ObservedOn time.Time `json:"observed_on"`
	PlaceGuess string    `json:"place_guess,omitempty"`
}

// MonthBucket counts observations per "YYYY-MM" month key.
type MonthBucket map[string]int

// RegionStats is the per-county aggregate produced by one aggregation run.
type RegionStats struct {
	Region  string
	Total   int
	Recent  int
	ByMonth MonthBucket
	// Trend is the relative change between the newest 12 populated month
	// buckets and the 12 before them. Not read by Classify.
	Trend float64
	AsOf  time.Time
}

// RiskRecord is the classification of one county.
type RiskRecord struct {
	Tier        Tier   `json:"risk"`
	Rationale   string `json:"rationale"`
	Source      string `json:"source"`
	LastUpdated string `json:"lastUpdated"`
	Color       string `json:"color"`

	// TriggerCount is the count that selected the rule; not serialized.
	TriggerCount int `json:"-"`
}

// LookupMetadata describes a generated lookup artifact.
type LookupMetadata struct {
	LastUpdated   string `json:"lastUpdated"`
	TotalCounties int    `json:"totalCounties"`
	GeneratedAt   string `json:"generatedAt"`
}

// RiskLookup maps normalized county names to their records.
type RiskLookup struct {
	Metadata LookupMetadata        `json:"metadata"`
	Counties map[string]RiskRecord `json:"counties"`

	folded map[string]string
}

// Get returns the record for a county name in any spelling that normalizes
// and case-folds to a lookup key.
func (l *RiskLookup) Get(name string) (RiskRecord, bool) {
	if l == nil || len(l.Counties) == 0 {
		return RiskRecord{}, false
	}
	if rec, ok := l.Counties[Normalize(name)]; ok {
		return rec, true
	}
	want := FoldKey(name)
	if l.folded != nil {
		key, ok := l.folded[want]
		if !ok {
			return RiskRecord{}, false
		}
		return l.Counties[key], true
	}
	for k, rec := range l.Counties {
		if FoldKey(k) == want {
			return rec, true
		}
	}
	return RiskRecord{}, false
}

// Resolve is Get with a safe default: unknown names resolve to an
// unclassified Minimal record instead of failing.
func (l *RiskLookup) Resolve(name string) RiskRecord {
	if rec, ok := l.Get(name); ok {
		return rec
	}
	return UnclassifiedRecord()
}

// Keys returns the lookup keys in fixed region order followed by any extras.
func (l *RiskLookup) Keys() []string {
	keys := make([]string, 0, len(l.Counties))
	seen := make(map[string]bool, len(l.Counties))
	for _, c := range FloridaCounties {
		k := Normalize(c)
		if _, ok := l.Counties[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range l.Counties {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// Index builds the case-folded key index so Get avoids a linear scan.
// Call it once after populating Counties and before sharing the lookup.
func (l *RiskLookup) Index() {
	l.folded = make(map[string]string, len(l.Counties))
	for k := range l.Counties {
		l.folded[FoldKey(k)] = k
	}
}

// UnclassifiedRecord is the record used for names absent from a lookup.
func UnclassifiedRecord() RiskRecord {
	return RiskRecord{
		Tier:  TierMinimal,
		Color: DefaultColor,
	}
}
