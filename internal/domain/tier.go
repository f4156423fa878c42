package domain

// Tier is an ordered risk classification label as it appears in artifacts.
type Tier string

const (
	TierHigh    Tier = "High"
	TierMedium  Tier = "Medium"
	TierLow     Tier = "Low (Watch)"
	TierMinimal Tier = "Minimal"
)

// DefaultColor is the fill used for Minimal and for anything unclassified.
const DefaultColor = "#9CA3AF"

// DefaultFillOpacity applies to Minimal and unmatched polygons.
const DefaultFillOpacity = 0.3

// TierInfo is the static display configuration of a tier.
type TierInfo struct {
	Label       Tier    `json:"label"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Action      string  `json:"action"`
	FillOpacity float64 `json:"fillOpacity"`
}

var tiers = []TierInfo{
	{
		Label:       TierHigh,
		Color:       "#DC2626",
		Description: "Established breeding populations; active management needed",
		Action:      "Immediate professional removal recommended",
		FillOpacity: 0.7,
	},
	{
		Label:       TierMedium,
		Color:       "#EA580C",
		Description: "Growing populations; regular sightings",
		Action:      "Monitor closely; professional removal available",
		FillOpacity: 0.6,
	},
	{
		Label:       TierLow,
		Color:       "#CA8A04",
		Description: "Occasional sightings; emerging risk",
		Action:      "Prevention measures recommended",
		FillOpacity: 0.5,
	},
	{
		Label:       TierMinimal,
		Color:       DefaultColor,
		Description: "Rare or no documented sightings",
		Action:      "Remain vigilant",
		FillOpacity: DefaultFillOpacity,
	},
}

// Tiers returns the tier configuration ordered from highest to lowest risk.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

// ParseTier maps an artifact label to a Tier.
func ParseTier(label string) (Tier, bool) {
	for _, t := range tiers {
		if string(t.Label) == label {
			return t.Label, true
		}
	}
	return "", false
}

// Info returns the display configuration, falling back to Minimal for
// unknown labels.
func (t Tier) Info() TierInfo {
	for _, info := range tiers {
		if info.Label == t {
			return info
		}
	}
	return tiers[len(tiers)-1]
}

// Color returns the tier's fill color.
func (t Tier) Color() string { return t.Info().Color }

// FillOpacity returns the tier's polygon fill opacity.
func (t Tier) FillOpacity() float64 { return t.Info().FillOpacity }

// Rank orders tiers: 0 is High, 3 is Minimal. Unknown labels rank as Minimal.
func (t Tier) Rank() int {
	for i, info := range tiers {
		if info.Label == t {
			return i
		}
	}
	return len(tiers) - 1
}

// Elevated reports whether the tier warrants a removal recommendation.
func (t Tier) Elevated() bool {
	return t == TierHigh || t == TierMedium
}
