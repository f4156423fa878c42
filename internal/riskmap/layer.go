package riskmap

import (
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/golang/geo/s2"
	"github.com/microcosm-cc/bluemonday"
)

// tooltipPolicy strips all markup from interpolated tooltip text.
var tooltipPolicy = bluemonday.StrictPolicy()

// Feature is a boundary feature joined with its risk record.
type Feature struct {
	Index    int               `json:"index"`
	Name     string            `json:"name"`
	Key      string            `json:"key"`
	GEOID    string            `json:"geoid,omitempty"`
	Matched  bool              `json:"matched"`
	Record   domain.RiskRecord `json:"record"`
	Style    Style             `json:"style"`
	Tooltip  string            `json:"tooltip,omitempty"`
	Geometry Geometry          `json:"geometry"`

	shape shape
}

// Selection copies the joined record into a SelectedRegion. It reports false
// for unmatched features.
func (f Feature) Selection() (SelectedRegion, bool) {
	if !f.Matched {
		return SelectedRegion{}, false
	}
	return SelectedRegion{
		Name:        f.Name,
		Tier:        f.Record.Tier,
		Rationale:   f.Record.Rationale,
		Source:      f.Record.Source,
		LastUpdated: f.Record.LastUpdated,
	}, true
}

// Contains reports whether the feature's geometry covers the point.
func (f Feature) Contains(ll LatLng) bool {
	return f.shape.contains(ll)
}

// Layer is the immutable result of joining boundaries with a lookup.
// It is safe for concurrent readers.
type Layer struct {
	features []Feature
	bounds   Bounds
	misses   []string
}

// NewLayer joins every feature to the lookup through the normalized name.
// Features without a record are still rendered with the default style and
// recorded as join misses.
func NewLayer(features []BoundaryFeature, lookup *domain.RiskLookup) *Layer {
	l := &Layer{features: make([]Feature, 0, len(features))}
	rect := s2.EmptyRect()
	for i, bf := range features {
		key := domain.Normalize(bf.Name)
		rec, matched := lookup.Get(bf.Name)
		f := Feature{
			Index:    i,
			Name:     bf.Name,
			Key:      key,
			GEOID:    bf.GEOID,
			Matched:  matched,
			Record:   rec,
			Style:    BaseStyle(rec, matched),
			Geometry: bf.Geometry,
			shape:    newShape(bf.Geometry),
		}
		if matched {
			f.Tooltip = Tooltip(bf.Name, rec.Tier)
		} else {
			f.Record = domain.UnclassifiedRecord()
			l.misses = append(l.misses, bf.Name)
		}
		rect = rect.Union(f.shape.rect)
		l.features = append(l.features, f)
	}
	l.bounds = boundsFromRect(rect)
	return l
}

// Tooltip renders the hover tooltip markup for a matched county.
func Tooltip(name string, tier domain.Tier) string {
	return `<div class="font-semibold">` + tooltipPolicy.Sanitize(name) +
		`</div><div class="text-sm">Risk: ` + tooltipPolicy.Sanitize(string(tier)) + `</div>`
}

// Len returns the number of features.
func (l *Layer) Len() int { return len(l.features) }

// Feature returns the feature at index i.
func (l *Layer) Feature(i int) (Feature, bool) {
	if i < 0 || i >= len(l.features) {
		return Feature{}, false
	}
	return l.features[i], true
}

// Features returns a copy of all features in source order.
func (l *Layer) Features() []Feature {
	out := make([]Feature, len(l.features))
	copy(out, l.features)
	return out
}

// Bounds returns the rectangle covering every feature.
func (l *Layer) Bounds() Bounds { return l.bounds }

// Misses returns the names of features that found no record.
func (l *Layer) Misses() []string {
	out := make([]string, len(l.misses))
	copy(out, l.misses)
	return out
}

// Matched returns the number of features joined to a record.
func (l *Layer) Matched() int { return len(l.features) - len(l.misses) }

// HitTest returns the index of the first feature containing the point.
func (l *Layer) HitTest(ll LatLng) (int, bool) {
	for i := range l.features {
		if l.features[i].shape.contains(ll) {
			return i, true
		}
	}
	return -1, false
}

// Find returns the feature whose name identifies the same county as name.
func (l *Layer) Find(name string) (Feature, bool) {
	for _, f := range l.features {
		if domain.SameRegion(f.Name, name) {
			return f, true
		}
	}
	return Feature{}, false
}
