package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// suffixRe matches a trailing administrative suffix, e.g. "Broward County".
var suffixRe = regexp.MustCompile(`(?i)\s+(county|parish)$`)

// Normalize canonicalizes a county name for joining boundary features with
// risk records. It trims surrounding whitespace and strips trailing
// "County"/"Parish" suffixes, leaving casing and punctuation intact.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		stripped := strings.TrimSpace(suffixRe.ReplaceAllString(s, ""))
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// FoldKey returns the normalized, case-folded form used for comparisons.
func FoldKey(name string) string {
	return cases.Fold().String(Normalize(name))
}

// SameRegion reports whether two names identify the same county.
func SameRegion(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// FormatCountyName returns the display form with a "County" suffix.
func FormatCountyName(name string) string {
	n := Normalize(name)
	if strings.HasSuffix(n, "County") {
		return n
	}
	return n + " County"
}

// Slug returns the lowercase, underscore-joined form of a normalized name,
// e.g. "Palm Beach County" -> "palm_beach".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(Normalize(name))), "_")
}
