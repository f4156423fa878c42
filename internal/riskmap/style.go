package riskmap

import "github.com/couchcryptid/county-risk-map/internal/domain"

// Style is the Leaflet path style of one polygon.
type Style struct {
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Color       string  `json:"color"`
	DashArray   string  `json:"dashArray"`
}

const (
	baseWeight       = 2
	baseOpacity      = 1
	baseStroke       = "#ffffff"
	baseDash         = "3"
	hoverWeight      = 3
	hoverStroke      = "#666"
	hoverFillOpacity = 0.8
)

// BaseStyle returns the resting style for a feature. Unmatched features use
// the default gray at the lowest opacity.
func BaseStyle(rec domain.RiskRecord, matched bool) Style {
	s := Style{
		FillColor:   domain.DefaultColor,
		FillOpacity: domain.DefaultFillOpacity,
		Weight:      baseWeight,
		Opacity:     baseOpacity,
		Color:       baseStroke,
		DashArray:   baseDash,
	}
	if matched {
		if rec.Color != "" {
			s.FillColor = rec.Color
		} else {
			s.FillColor = rec.Tier.Color()
		}
		s.FillOpacity = rec.Tier.FillOpacity()
	}
	return s
}

// Highlight returns s with the hover emphasis applied. Fill color is kept.
func Highlight(s Style) Style {
	s.Weight = hoverWeight
	s.Color = hoverStroke
	s.DashArray = ""
	s.FillOpacity = hoverFillOpacity
	return s
}
