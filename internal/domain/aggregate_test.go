package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregate_ZeroFillsAllRegions(t *testing.T) {
	ref := date(2024, time.November, 15)
	agg := Aggregate(nil, ref)

	require.Len(t, agg.Stats, len(FloridaCounties))
	for i, s := range agg.Stats {
		assert.Equal(t, FloridaCounties[i], s.Region)
		assert.Zero(t, s.Total)
		assert.Zero(t, s.Recent)
		assert.NotNil(t, s.ByMonth)
		assert.Equal(t, ref, s.AsOf)
	}
}

func TestAggregate_BucketsAndWindows(t *testing.T) {
	ref := date(2024, time.November, 15)
	obs := []Observation{
		{ID: 1, ObservedOn: date(2024, time.November, 1), PlaceGuess: "Hollywood, Broward County, FL"},
		{ID: 2, ObservedOn: date(2024, time.October, 3), PlaceGuess: "Broward County, FL"},
		{ID: 3, ObservedOn: date(2023, time.November, 15), PlaceGuess: "Broward County, FL"}, // cutoff day, recent
		{ID: 4, ObservedOn: date(2023, time.November, 14), PlaceGuess: "Broward County, FL"}, // one day too old
		{ID: 5, ObservedOn: date(2022, time.January, 9), PlaceGuess: "Key West, Monroe County"},
		{ID: 6, ObservedOn: date(2024, time.May, 2), PlaceGuess: "somewhere in the Bahamas"},
		{ID: 7, PlaceGuess: "Monroe County, FL"}, // no date
	}

	agg := Aggregate(obs, ref)
	assert.Equal(t, 6, agg.Matched)
	assert.Equal(t, 1, agg.Dropped)

	broward, ok := agg.ByRegion("Broward County")
	require.True(t, ok)
	assert.Equal(t, 4, broward.Total)
	assert.Equal(t, 3, broward.Recent)
	assert.Equal(t, MonthBucket{"2024-11": 1, "2024-10": 1, "2023-11": 2}, broward.ByMonth)

	monroe, ok := agg.ByRegion("Monroe")
	require.True(t, ok)
	assert.Equal(t, 2, monroe.Total)
	assert.Equal(t, 0, monroe.Recent)
	assert.Equal(t, MonthBucket{"2022-01": 1}, monroe.ByMonth)
}

type fixedResolver map[string]string

func (f fixedResolver) ResolveRegion(place string) (string, bool) {
	c, ok := f[place]
	return c, ok
}

func TestAggregateWith_CustomResolverAndWindow(t *testing.T) {
	ref := date(2024, time.June, 30)
	resolver := fixedResolver{"spot-a": "Lee", "spot-b": "Narnia"}
	obs := []Observation{
		{ObservedOn: date(2024, time.June, 1), PlaceGuess: "spot-a"},
		{ObservedOn: date(2024, time.February, 1), PlaceGuess: "spot-a"},
		{ObservedOn: date(2024, time.June, 1), PlaceGuess: "spot-b"},
	}

	agg := AggregateWith(obs, ref, resolver, 3)
	lee, _ := agg.ByRegion("Lee")
	assert.Equal(t, 2, lee.Total)
	assert.Equal(t, 1, lee.Recent)
	assert.Equal(t, 2, agg.Matched)
	assert.Equal(t, 1, agg.Dropped, "regions outside the fixed set are dropped")
}

func TestTrend(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Zero(t, Trend(MonthBucket{}))
	})

	t.Run("no previous window", func(t *testing.T) {
		assert.Zero(t, Trend(MonthBucket{"2024-01": 5, "2024-02": 3}))
	})

	t.Run("doubling", func(t *testing.T) {
		b := MonthBucket{}
		start := date(2022, time.January, 1)
		for i := 0; i < 24; i++ {
			n := 1
			if i >= 12 {
				n = 2
			}
			b[MonthKey(start.AddDate(0, i, 0))] = n
		}
		assert.InDelta(t, 1.0, Trend(b), 1e-9)
	})
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)))
	assert.Empty(t, MonthKey(time.Time{}))
}
