package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLookup() *RiskLookup {
	return &RiskLookup{
		Counties: map[string]RiskRecord{
			"Miami-Dade": {Tier: TierHigh, Color: "#DC2626", Rationale: "120 sightings"},
			"St. Johns":  {Tier: TierLow, Color: "#CA8A04"},
		},
	}
}

func TestRiskLookup_Get(t *testing.T) {
	for _, indexed := range []bool{false, true} {
		l := testLookup()
		if indexed {
			l.Index()
		}

		rec, ok := l.Get("Miami-Dade County")
		assert.True(t, ok)
		assert.Equal(t, TierHigh, rec.Tier)

		rec, ok = l.Get("st. johns county")
		assert.True(t, ok)
		assert.Equal(t, TierLow, rec.Tier)

		_, ok = l.Get("Unknown Parish")
		assert.False(t, ok)
	}
}

func TestRiskLookup_ResolveDefaultsToMinimal(t *testing.T) {
	rec := testLookup().Resolve("Unknown Parish")
	assert.Equal(t, TierMinimal, rec.Tier)
	assert.Equal(t, DefaultColor, rec.Color)

	var nilLookup *RiskLookup
	assert.Equal(t, TierMinimal, nilLookup.Resolve("Broward").Tier)
}

func TestRiskLookup_Keys(t *testing.T) {
	l := testLookup()
	l.Counties["Atlantis"] = RiskRecord{}
	assert.Equal(t, []string{"Miami-Dade", "St. Johns", "Atlantis"}, l.Keys())
}

func TestTier(t *testing.T) {
	assert.InDelta(t, 0.7, TierHigh.FillOpacity(), 1e-9)
	assert.InDelta(t, 0.6, TierMedium.FillOpacity(), 1e-9)
	assert.InDelta(t, 0.5, TierLow.FillOpacity(), 1e-9)
	assert.InDelta(t, 0.3, TierMinimal.FillOpacity(), 1e-9)
	assert.InDelta(t, 0.3, Tier("Severe").FillOpacity(), 1e-9)
	assert.Equal(t, DefaultColor, Tier("").Color())

	tier, ok := ParseTier("Low (Watch)")
	assert.True(t, ok)
	assert.Equal(t, TierLow, tier)
	_, ok = ParseTier("low")
	assert.False(t, ok)

	assert.True(t, TierMedium.Elevated())
	assert.False(t, TierLow.Elevated())
	assert.Len(t, Tiers(), 4)
}
