// Command genjson rebuilds the JSON risk lookup from the hand-maintained CSV.
// The CSV is the source of truth; run this after editing it.
//
// Usage:
//
//	go run ./cmd/genjson \
//	  -csv data/florida_iguana_risk_by_county.csv \
//	  -json data/iguana-risk-data.json
//
// Pass -generated-at to stamp a fixed time for reproducible output.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/artifact"
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "data/florida_iguana_risk_by_county.csv", "path to the risk CSV")
	jsonPath := flag.String("json", "data/iguana-risk-data.json", "output path for the JSON lookup")
	generatedAt := flag.String("generated-at", "", "fixed RFC 3339 generation time (default: now)")
	flag.Parse()

	if *generatedAt != "" {
		t, err := time.Parse(time.RFC3339, *generatedAt)
		if err != nil {
			return fmt.Errorf("invalid -generated-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
		defer domain.SetClock(nil)
	}

	lookup, err := artifact.RegenerateJSON(*csvPath, *jsonPath, domain.Now())
	if err != nil {
		return err
	}

	log.Printf("wrote %s: %d counties, last updated %s", *jsonPath, lookup.Metadata.TotalCounties, lookup.Metadata.LastUpdated)
	for _, info := range domain.Tiers() {
		log.Printf("  %-12s %d", info.Label, artifact.TierCounts(lookup)[info.Label])
	}
	return nil
}
