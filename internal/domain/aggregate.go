package domain

import (
	"sort"
	"time"
)

// DefaultRecentMonths is the trailing window length used for Recent counts.
const DefaultRecentMonths = 12

// trendWindow is the number of populated month buckets on each side of the
// year-over-year comparison.
const trendWindow = 12

// Aggregation is the result of one aggregation run.
type Aggregation struct {
	// Stats holds one entry per county in FloridaCounties order.
	Stats   []RegionStats
	Matched int
	Dropped int
}

// ByRegion returns the statistics for a county, or false when unknown.
func (a Aggregation) ByRegion(region string) (RegionStats, bool) {
	for _, s := range a.Stats {
		if SameRegion(s.Region, region) {
			return s, true
		}
	}
	return RegionStats{}, false
}

// Aggregate groups observations by county with the default substring
// resolver and a 12-month recent window ending at ref.
func Aggregate(observations []Observation, ref time.Time) Aggregation {
	return AggregateWith(observations, ref, ScanResolver{}, DefaultRecentMonths)
}

// AggregateWith groups observations by county. Every county appears in the
// result, zero-filled when it has no observations. Observations whose place
// text resolves to no county are dropped and counted. Observations without a
// date count toward Total only.
func AggregateWith(observations []Observation, ref time.Time, resolver RegionResolver, recentMonths int) Aggregation {
	if recentMonths <= 0 {
		recentMonths = DefaultRecentMonths
	}
	cutoff := ref.AddDate(0, -recentMonths, 0)

	index := make(map[string]int, len(FloridaCounties))
	agg := Aggregation{Stats: make([]RegionStats, len(FloridaCounties))}
	for i, county := range FloridaCounties {
		index[county] = i
		agg.Stats[i] = RegionStats{Region: county, ByMonth: MonthBucket{}, AsOf: ref}
	}

	for _, obs := range observations {
		county, ok := resolver.ResolveRegion(obs.PlaceGuess)
		if !ok {
			agg.Dropped++
			continue
		}
		i, ok := index[county]
		if !ok {
			agg.Dropped++
			continue
		}
		agg.Matched++

		s := &agg.Stats[i]
		s.Total++
		if obs.ObservedOn.IsZero() {
			continue
		}
		if !obs.ObservedOn.Before(cutoff) {
			s.Recent++
		}
		s.ByMonth[MonthKey(obs.ObservedOn)]++
	}

	for i := range agg.Stats {
		agg.Stats[i].Trend = Trend(agg.Stats[i].ByMonth)
	}
	return agg
}

// Trend compares the newest 12 populated month buckets with the 12 before
// them and returns the relative change, or 0 when the earlier window is empty.
func Trend(byMonth MonthBucket) float64 {
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	var recent, previous int
	for i, k := range keys {
		switch {
		case i < trendWindow:
			recent += byMonth[k]
		case i < 2*trendWindow:
			previous += byMonth[k]
		}
	}
	if previous == 0 {
		return 0
	}
	return float64(recent-previous) / float64(previous)
}
