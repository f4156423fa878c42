package artifact

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	generatedAt = time.Date(2024, time.November, 20, 13, 45, 30, 123000000, time.UTC)
	countRe     = regexp.MustCompile(`\d+`)
)

// triggerCount extracts the count a rationale was rendered with.
func triggerCount(t *testing.T, rationale string) int {
	t.Helper()
	m := countRe.FindString(rationale)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	require.NoError(t, err)
	return n
}

func sampleStats() []domain.RegionStats {
	asOf := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)
	agg := domain.Aggregate(nil, asOf)
	counts := map[string][2]int{ // recent, total
		"Miami-Dade":   {180, 240},
		"Broward":      {55, 70},
		"Palm Beach":   {22, 30},
		"Lee":          {11, 14},
		"Collier":      {4, 9},
		"Monroe":       {1, 6},
		"Hillsborough": {0, 2},
	}
	for i, s := range agg.Stats {
		if c, ok := counts[s.Region]; ok {
			agg.Stats[i].Recent = c[0]
			agg.Stats[i].Total = c[1]
		}
	}
	return agg.Stats
}

func TestBuildLookup_AllRegionsOnce(t *testing.T) {
	lookup := BuildLookup(map[string]domain.RiskRecord{
		"Broward":  {Tier: domain.TierHigh, Rationale: "55 documented sightings", LastUpdated: "2024-11"},
		"Atlantis": {Tier: domain.TierHigh, LastUpdated: "2030-01"},
	}, generatedAt)

	require.Len(t, lookup.Counties, 67)
	for _, c := range domain.FloridaCounties {
		_, ok := lookup.Counties[domain.Normalize(c)]
		assert.True(t, ok, c)
	}
	assert.NotContains(t, lookup.Counties, "Atlantis")

	broward := lookup.Counties["Broward"]
	assert.Equal(t, "#DC2626", broward.Color)

	liberty := lookup.Counties["Liberty"]
	assert.Equal(t, domain.TierMinimal, liberty.Tier)
	assert.Equal(t, "No documented sightings; unsuitable climate or geography", liberty.Rationale)
	assert.Equal(t, domain.DefaultColor, liberty.Color)

	assert.Equal(t, "2024-11", lookup.Metadata.LastUpdated)
	assert.Equal(t, 67, lookup.Metadata.TotalCounties)
	assert.Equal(t, "2024-11-20T13:45:30.123Z", lookup.Metadata.GeneratedAt)
}

func TestRoundTrip_StatsToCSVToLookup(t *testing.T) {
	stats := sampleStats()
	records := domain.ClassifyAll(stats)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, RowsFromRecords(records)))

	rows, err := ReadCSV(&csvBuf)
	require.NoError(t, err)
	require.Len(t, rows, 67)

	direct := BuildLookup(records, generatedAt)
	viaCSV := BuildLookup(RecordsFromRows(rows), generatedAt)

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, viaCSV))
	decoded, err := ReadJSON(&jsonBuf)
	require.NoError(t, err)

	for _, s := range stats {
		key := domain.Normalize(s.Region)
		want := direct.Counties[key]
		got := decoded.Counties[key]
		assert.Equal(t, want.Tier, got.Tier, s.Region)
		assert.Equal(t, records[s.Region].TriggerCount, triggerCount(t, got.Rationale), s.Region)
		assert.Equal(t, want.Rationale, got.Rationale, s.Region)
	}

	type summary struct {
		Last  string
		Total int
	}
	if diff := cmp.Diff(
		summary{direct.Metadata.LastUpdated, direct.Metadata.TotalCounties},
		summary{decoded.Metadata.LastUpdated, decoded.Metadata.TotalCounties},
	); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_Format(t *testing.T) {
	rows := []Row{
		{County: "Broward", Record: domain.RiskRecord{Tier: domain.TierHigh, Rationale: `55 "confirmed" sightings, mostly canals`, Source: "iNaturalist", LastUpdated: "2024-11"}},
		{County: "Liberty", Record: domain.RiskRecord{Tier: domain.TierMinimal, Rationale: "No documented sightings", Source: "FWC", LastUpdated: "2024-11"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	want := strings.Join([]string{
		"county,risk_level,rationale,primary_source,last_updated",
		`Broward,High,"55 ""confirmed"" sightings, mostly canals",iNaturalist,2024-11`,
		`Liberty,Minimal,"No documented sightings",FWC,2024-11`,
	}, "\n")
	assert.Equal(t, want, buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, `55 "confirmed" sightings, mostly canals`, back[0].Record.Rationale)
	assert.Equal(t, "#DC2626", back[0].Record.Color)
	assert.Equal(t, 2, back[0].Line)
}

func TestReadCSV_Errors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "header"},
		{"bad header", "name,tier,why,src,updated\n", "unexpected csv header"},
		{"short row", "county,risk_level,rationale,primary_source,last_updated\nBroward,High\n", "read csv"},
		{"unknown tier", "county,risk_level,rationale,primary_source,last_updated\nBroward,Severe,\"x\",FWC,2024-11\n", "unknown risk level"},
		{"bare quote", "county,risk_level,rationale,primary_source,last_updated\nBroward,High,\"x\"y\",FWC,2024-11\n", "read csv"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"metadata":{}`))
	require.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`{"metadata":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing counties")

	_, err = ReadJSON(strings.NewReader(`{"counties":{"Broward":{"risk":"Severe"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown risk level")
}

func TestReadJSON_DerivesMissingColor(t *testing.T) {
	lookup, err := ReadJSON(strings.NewReader(`{"metadata":{"lastUpdated":"2024-11","totalCounties":1,"generatedAt":"x"},"counties":{"Lee":{"risk":"Medium","rationale":"11 recent sightings","source":"iNaturalist","lastUpdated":"2024-11"}}}`))
	require.NoError(t, err)

	rec, ok := lookup.Get("LEE COUNTY")
	require.True(t, ok)
	assert.Equal(t, "#EA580C", rec.Color)
}

func TestRegenerateJSON(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "risk.csv")
	jsonPath := filepath.Join(dir, "nested", "risk.json")

	records := domain.ClassifyAll(sampleStats())
	require.NoError(t, SaveCSV(csvPath, RowsFromRecords(records)))

	lookup, err := RegenerateJSON(csvPath, jsonPath, generatedAt)
	require.NoError(t, err)
	assert.Len(t, lookup.Counties, 67)

	loaded, err := LoadJSON(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, domain.TierHigh, loaded.Counties["Miami-Dade"].Tier)
	assert.Equal(t, domain.TierHigh, loaded.Counties["Broward"].Tier)
	assert.Equal(t, domain.TierMedium, loaded.Counties["Palm Beach"].Tier)
	assert.Equal(t, domain.TierMedium, loaded.Counties["Lee"].Tier)
	assert.Equal(t, domain.TierLow, loaded.Counties["Collier"].Tier)
	assert.Equal(t, domain.TierLow, loaded.Counties["Monroe"].Tier)
	assert.Equal(t, domain.TierMinimal, loaded.Counties["Hillsborough"].Tier)

	counts := TierCounts(loaded)
	assert.Equal(t, 2, counts[domain.TierHigh])
	assert.Equal(t, 2, counts[domain.TierMedium])
	assert.Equal(t, 2, counts[domain.TierLow])
	assert.Equal(t, 61, counts[domain.TierMinimal])
}

func TestRegenerateJSON_MissingCSV(t *testing.T) {
	dir := t.TempDir()
	_, err := RegenerateJSON(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.json"), generatedAt)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}
