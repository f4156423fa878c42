// Package riskmap joins county boundary geometry with the risk lookup and
// models the interactive map: per-feature styling, hover highlighting, click
// selection and the details card shown for a selected county.
package riskmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultNameProperty is the GeoJSON property holding the county name in the
// Census-derived boundary files.
const DefaultNameProperty = "NAME"

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ring is a closed sequence of vertices. The closing vertex is not repeated.
type Ring []LatLng

// Polygon is an exterior ring followed by zero or more holes.
type Polygon []Ring

// Geometry is one or more polygons.
type Geometry []Polygon

// BoundaryFeature is one county outline from the boundary file.
type BoundaryFeature struct {
	Name     string
	GEOID    string
	Geometry Geometry
}

var (
	errNotCollection = errors.New("boundary file is not a FeatureCollection")
	errNoFeatures    = errors.New("boundary file has no features")
)

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   geoJSONGeometry `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadBoundaryFile opens path and parses it with LoadBoundaries.
func LoadBoundaryFile(path, nameProperty string) ([]BoundaryFeature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	features, err := LoadBoundaries(f, nameProperty)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}

// LoadBoundaries parses a GeoJSON FeatureCollection of Polygon and
// MultiPolygon features. Every feature must carry a non-empty string under
// nameProperty.
func LoadBoundaries(r io.Reader, nameProperty string) ([]BoundaryFeature, error) {
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}

	var fc geoJSONCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode boundaries: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, errNotCollection
	}
	if len(fc.Features) == 0 {
		return nil, errNoFeatures
	}

	out := make([]BoundaryFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		name, _ := f.Properties[nameProperty].(string)
		if name == "" {
			return nil, fmt.Errorf("feature %d: missing %q property", i, nameProperty)
		}
		geom, err := parseGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, name, err)
		}
		out = append(out, BoundaryFeature{
			Name:     name,
			GEOID:    propertyString(f.Properties["GEOID"]),
			Geometry: geom,
		})
	}
	return out, nil
}

func propertyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}

func parseGeometry(g geoJSONGeometry) (Geometry, error) {
	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode polygon: %w", err)
		}
		p, err := toPolygon(coords)
		if err != nil {
			return nil, err
		}
		return Geometry{p}, nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode multipolygon: %w", err)
		}
		geom := make(Geometry, 0, len(coords))
		for _, c := range coords {
			p, err := toPolygon(c)
			if err != nil {
				return nil, err
			}
			geom = append(geom, p)
		}
		return geom, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func toPolygon(rings [][][]float64) (Polygon, error) {
	if len(rings) == 0 {
		return nil, errors.New("polygon has no rings")
	}
	p := make(Polygon, 0, len(rings))
	for _, raw := range rings {
		ring := make(Ring, 0, len(raw))
		for _, pos := range raw {
			if len(pos) < 2 {
				return nil, fmt.Errorf("position has %d coordinates", len(pos))
			}
			// GeoJSON positions are [longitude, latitude].
			ll := LatLng{Lat: pos[1], Lng: pos[0]}
			if n := len(ring); n > 0 && ring[n-1] == ll {
				continue
			}
			ring = append(ring, ll)
		}
		if n := len(ring); n > 1 && ring[0] == ring[n-1] {
			ring = ring[:n-1]
		}
		if len(ring) < 3 {
			return nil, fmt.Errorf("ring has %d distinct vertices", len(ring))
		}
		p = append(p, ring)
	}
	return p, nil
}
