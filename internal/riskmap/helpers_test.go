package riskmap

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/artifact"
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/stretchr/testify/require"
)

const (
	idxMiamiDade = iota
	idxBroward
	idxMonroe
	idxLake
	idxUnknown
)

func loadFixture(t *testing.T) []BoundaryFeature {
	t.Helper()
	features, err := LoadBoundaryFile(filepath.Join("testdata", "counties.geojson"), "")
	require.NoError(t, err)
	require.Len(t, features, 5)
	return features
}

func fixtureLookup() *domain.RiskLookup {
	return artifact.BuildLookup(map[string]domain.RiskRecord{
		"Miami-Dade": {Tier: domain.TierHigh, Rationale: "180 sightings", Source: domain.SourceINaturalist, LastUpdated: "2024-11"},
		"Broward":    {Tier: domain.TierMedium, Rationale: "22 sightings documented", Source: domain.SourceINaturalist, LastUpdated: "2024-11"},
		"Monroe":     {Tier: domain.TierLow, Rationale: "4 sporadic sightings", Source: domain.SourceINaturalist, LastUpdated: "2024-11"},
	}, time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC))
}

func fixtureLayer(t *testing.T) *Layer {
	t.Helper()
	return NewLayer(loadFixture(t), fixtureLookup())
}
