package domain

import "strings"

// FloridaCounties is the fixed region set in canonical form and order.
// Resolution scans it top to bottom, so the order is part of the contract.
var FloridaCounties = []string{
	"Alachua", "Baker", "Bay", "Bradford", "Brevard", "Broward", "Calhoun",
	"Charlotte", "Citrus", "Clay", "Collier", "Columbia", "DeSoto", "Dixie",
	"Duval", "Escambia", "Flagler", "Franklin", "Gadsden", "Gilchrist", "Glades",
	"Gulf", "Hamilton", "Hardee", "Hendry", "Hernando", "Highlands", "Hillsborough",
	"Holmes", "Indian River", "Jackson", "Jefferson", "Lafayette", "Lake", "Lee",
	"Leon", "Levy", "Liberty", "Madison", "Manatee", "Marion", "Martin", "Miami-Dade",
	"Monroe", "Nassau", "Okaloosa", "Okeechobee", "Orange", "Osceola", "Palm Beach",
	"Pasco", "Pinellas", "Polk", "Putnam", "St. Johns", "St. Lucie", "Santa Rosa",
	"Sarasota", "Seminole", "Sumter", "Suwannee", "Taylor", "Union", "Volusia",
	"Wakulla", "Walton", "Washington",
}

// regionIndex maps the case-folded name of every county to its canonical form.
var regionIndex = func() map[string]string {
	idx := make(map[string]string, len(FloridaCounties))
	for _, c := range FloridaCounties {
		idx[FoldKey(c)] = c
	}
	return idx
}()

// Regions returns a copy of the fixed region set.
func Regions() []string {
	out := make([]string, len(FloridaCounties))
	copy(out, FloridaCounties)
	return out
}

// CanonicalRegion returns the canonical county name for any spelling that
// normalizes and case-folds to a member of the fixed set.
func CanonicalRegion(name string) (string, bool) {
	c, ok := regionIndex[FoldKey(name)]
	return c, ok
}

// IsRegion reports whether name identifies one of the fixed counties.
func IsRegion(name string) bool {
	_, ok := CanonicalRegion(name)
	return ok
}

// RegionResolver maps free-text place descriptions to a county.
type RegionResolver interface {
	ResolveRegion(place string) (string, bool)
}

// ScanResolver resolves places by scanning [FloridaCounties] for the first
// name contained in the place text.
type ScanResolver struct{}

// ResolveRegion implements RegionResolver.
func (ScanResolver) ResolveRegion(place string) (string, bool) {
	return ResolveRegion(place)
}

// ResolveRegion returns the first county whose name is a substring of place.
// Matching is case-sensitive; an empty place never matches.
func ResolveRegion(place string) (string, bool) {
	if place == "" {
		return "", false
	}
	for _, county := range FloridaCounties {
		if strings.Contains(place, county) {
			return county, true
		}
	}
	return "", false
}
