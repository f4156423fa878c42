// Package domain models county-level green iguana (Iguana iguana) risk data
// for the 67 Florida counties.
//
// # Data Source
//
// Sightings come from the iNaturalist observations API, filtered to
// research-grade records of taxon 35190 inside place 28 (Florida). Each
// observation carries an "observed_on" date (YYYY-MM-DD) and a free-text
// "place_guess" written by the observer, e.g.
//
//	"Fort Lauderdale, FL 33301, USA"
//	"Miami-Dade County, US-FL, US"
//	"Palm Beach County, FL, USA"
//
// Counties without any iNaturalist evidence are attributed to the Florida
// Fish and Wildlife Conservation Commission (FWC) baseline.
//
// # County Resolution
//
// An observation is assigned to the first county in [FloridaCounties] whose
// name appears as a case-sensitive substring of its place text. There is no
// geocoding fallback: observations whose place text names no county are
// dropped and only counted. This is a known precision limitation (for
// example "Lee" also matches "Leesburg", which is in Lake County).
//
// # Name Normalization
//
// Boundary files name counties "Miami-Dade County" while the risk artifacts
// key them "Miami-Dade". [Normalize] strips the trailing "County"/"Parish"
// suffix and surrounding whitespace and is the only join key between the two
// datasets. Comparison is case-folded; anything else (abbreviations such as
// "St" vs "St.", diacritics) is a silent non-match.
//
// # Aggregation
//
// Observations are bucketed by calendar month (UTC, "YYYY-MM"). Recent
// counts cover the trailing window (12 months by default) ending at the
// reference date. A year-over-year trend is derived from the newest 24
// populated month buckets; it is reported but does not influence the tier.
//
// # Risk Tiers
//
// The four-level scale is ordered High > Medium > Low (Watch) > Minimal.
// Classification walks the ordered rule table in rules.yaml and takes the
// first matching row:
//
//	recent >= 100  High         recent >= 50   High
//	recent >= 20   Medium       recent >= 10   Medium
//	recent >= 3    Low (Watch)  total  >= 3    Low (Watch)
//	total  >= 1    Minimal      otherwise      Minimal
//
// Every row emits a rationale embedding the count that triggered it.
package domain
