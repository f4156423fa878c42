// Command validate performs end-to-end integrity checks across the risk
// artifacts and the boundary file the map joins them to: the CSV source of
// truth, the generated JSON lookup, the boundary join, and the map widget's
// selection behaviour over every joined county.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/florida_iguana_risk_by_county.csv \
//	  -json data/iguana-risk-data.json \
//	  -boundaries data/florida-counties.geojson
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/couchcryptid/county-risk-map/internal/artifact"
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/riskmap"
)

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var validSources = map[string]bool{domain.SourceINaturalist: true, domain.SourceFWC: true}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "data/florida_iguana_risk_by_county.csv", "path to the risk CSV")
	jsonPath := flag.String("json", "data/iguana-risk-data.json", "path to the JSON lookup")
	boundaryPath := flag.String("boundaries", "data/florida-counties.geojson", "path to the county boundary GeoJSON")
	nameProperty := flag.String("name-property", riskmap.DefaultNameProperty, "feature property holding the county name")
	siteURL := flag.String("site-url", riskmap.DefaultSiteURL, "main site the details card hands off to")
	flag.Parse()

	if *csvPath == "" || *jsonPath == "" || *boundaryPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *jsonPath, *boundaryPath, *nameProperty, *siteURL); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, jsonPath, boundaryPath, nameProperty, siteURL string) int {
	// ── Load all data sources ──
	fmt.Println("=== County Risk Data Integrity Validation ===")
	fmt.Println()

	rows, err := artifact.LoadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	lookup, err := artifact.LoadJSON(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load JSON: %v\n", err)
		return 1
	}

	features, err := riskmap.LoadBoundaryFile(boundaryPath, nameProperty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load boundaries: %v\n", err)
		return 1
	}
	layer := riskmap.NewLayer(features, lookup)

	// ── Run validation phases ──
	phases := []*phase{
		validateCSV(rows),
		validateLookup(lookup, rows),
		validateJoin(layer),
		validateMapInteraction(layer, lookup, siteURL),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV rows, %d JSON counties, %d boundary features (%d joined)\n",
		len(rows), len(lookup.Counties), layer.Len(), layer.Matched())

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: CSV Integrity ──
// Every county appears exactly once with a complete record.

func validateCSV(rows []artifact.Row) *phase {
	p := &phase{name: "Phase 1: CSV Integrity"}

	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		canonical, ok := domain.CanonicalRegion(r.County)
		if !ok {
			p.errorf("line %d: %q is not a Florida county", r.Line, r.County)
			continue
		}
		if canonical != r.County {
			p.errorf("line %d: %q should be spelled %q", r.Line, r.County, canonical)
		}
		if prev, dup := seen[canonical]; dup {
			p.errorf("line %d: %s already listed on line %d", r.Line, canonical, prev)
		}
		seen[canonical] = r.Line
		checkRecord(p, fmt.Sprintf("line %d (%s)", r.Line, r.County), r.Record)
	}

	for _, county := range domain.FloridaCounties {
		if _, ok := seen[county]; !ok {
			p.errorf("%s: missing from CSV", county)
		}
	}
	return p
}

func checkRecord(p *phase, where string, rec domain.RiskRecord) {
	if rec.Rationale == "" {
		p.errorf("%s: empty rationale", where)
	}
	if !validSources[rec.Source] {
		p.errorf("%s: unknown source %q", where, rec.Source)
	}
	if !monthRe.MatchString(rec.LastUpdated) {
		p.errorf("%s: last_updated %q is not YYYY-MM", where, rec.LastUpdated)
	}
}

// ── Phase 2: Lookup Consistency ──
// The JSON lookup is exactly what regenerating it from the CSV would produce.

func validateLookup(lookup *domain.RiskLookup, rows []artifact.Row) *phase {
	p := &phase{name: "Phase 2: Lookup Consistency (JSON vs CSV)"}

	want := artifact.BuildLookup(artifact.RecordsFromRows(rows), domain.Now())

	if lookup.Metadata.TotalCounties != want.Metadata.TotalCounties {
		p.errorf("metadata.totalCounties: expected %d, got %d", want.Metadata.TotalCounties, lookup.Metadata.TotalCounties)
	}
	if lookup.Metadata.LastUpdated != want.Metadata.LastUpdated {
		p.errorf("metadata.lastUpdated: expected %q, got %q", want.Metadata.LastUpdated, lookup.Metadata.LastUpdated)
	}
	if lookup.Metadata.GeneratedAt == "" {
		p.errorf("metadata.generatedAt is empty")
	}

	for _, key := range want.Keys() {
		exp := want.Counties[key]
		got, ok := lookup.Counties[key]
		if !ok {
			p.errorf("%s: missing from JSON", key)
			continue
		}
		if got.Tier != exp.Tier {
			p.errorf("%s: risk: expected %q, got %q", key, exp.Tier, got.Tier)
		}
		if got.Rationale != exp.Rationale {
			p.errorf("%s: rationale differs from CSV", key)
		}
		if got.Source != exp.Source {
			p.errorf("%s: source: expected %q, got %q", key, exp.Source, got.Source)
		}
		if got.LastUpdated != exp.LastUpdated {
			p.errorf("%s: lastUpdated: expected %q, got %q", key, exp.LastUpdated, got.LastUpdated)
		}
		if got.Color != got.Tier.Color() {
			p.errorf("%s: color %q does not match tier %q", key, got.Color, got.Tier)
		}
	}
	for key := range lookup.Counties {
		if _, ok := want.Counties[key]; !ok {
			p.errorf("%s: in JSON but not in CSV", key)
		}
	}
	return p
}

// ── Phase 3: Boundary Join ──
// Every boundary feature finds a record and every county has a feature.

func validateJoin(layer *riskmap.Layer) *phase {
	p := &phase{name: "Phase 3: Boundary Join (GeoJSON vs JSON)"}

	for _, name := range layer.Misses() {
		p.errorf("feature %q has no risk record (normalized %q)", name, domain.Normalize(name))
	}
	for _, county := range domain.FloridaCounties {
		if _, ok := layer.Find(county); !ok {
			p.errorf("%s: no boundary feature", county)
		}
	}
	if layer.Bounds().Empty() {
		p.errorf("layer bounds are empty")
	}
	return p
}

// ── Phase 4: Map Interaction ──
// Drives the map widget over every joined county: hover styling, selection
// and the details card handoff.

func validateMapInteraction(layer *riskmap.Layer, lookup *domain.RiskLookup, siteURL string) *phase {
	p := &phase{name: "Phase 4: Map Interaction (select + handoff)"}

	m, err := riskmap.Mount(riskmap.NewContainer("validate"), layer)
	if err != nil {
		p.errorf("mount: %v", err)
		return p
	}
	defer m.Unmount()

	var last *riskmap.SelectedRegion
	if err := m.OnSelect(func(sel *riskmap.SelectedRegion) { last = sel }); err != nil {
		p.errorf("subscribe: %v", err)
		return p
	}

	for _, f := range layer.Features() {
		checkHover(p, m, f)
		if !f.Matched {
			continue
		}

		if err := m.Click(f.Index); err != nil {
			p.errorf("%s: click: %v", f.Name, err)
			continue
		}
		if last == nil {
			p.errorf("%s: click did not notify a selection", f.Name)
			continue
		}
		rec := lookup.Resolve(f.Name)
		if last.Tier != rec.Tier || last.Rationale != rec.Rationale {
			p.errorf("%s: selection shows %q, lookup has %q", f.Name, last.Tier, rec.Tier)
		}
		checkHandoff(p, riskmap.NewDetailsCard(*last, siteURL), f.Key)
	}

	if err := m.Close(); err != nil {
		p.errorf("close: %v", err)
	} else if last != nil {
		p.errorf("close did not clear the selection")
	}
	return p
}

func checkHover(p *phase, m *riskmap.Map, f riskmap.Feature) {
	if err := m.Hover(f.Index); err != nil {
		p.errorf("%s: hover: %v", f.Name, err)
		return
	}
	if order := m.DrawOrder(); order[len(order)-1] != f.Index {
		p.errorf("%s: hover did not bring feature to front", f.Name)
	}
	if err := m.Unhover(f.Index); err != nil {
		p.errorf("%s: unhover: %v", f.Name, err)
		return
	}
	if s, err := m.Style(f.Index); err != nil || s != f.Style {
		p.errorf("%s: unhover did not restore the base style", f.Name)
	}
}

func checkHandoff(p *phase, card riskmap.DetailsCard, key string) {
	u, err := url.Parse(card.HandoffURL)
	if err != nil {
		p.errorf("%s: handoff url: %v", key, err)
		return
	}
	q := u.Query()
	if got := q.Get("county"); got != key {
		p.errorf("%s: handoff county=%q", key, got)
	}
	if got, want := q.Get("utm_campaign"), "county_"+domain.Slug(key); got != want {
		p.errorf("%s: handoff utm_campaign=%q, expected %q", key, got, want)
	}
	if u.Path != "/providers" {
		p.errorf("%s: handoff path %q", key, u.Path)
	}
}
