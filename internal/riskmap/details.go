package riskmap

import (
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// DefaultSiteURL is the lead-generation site the details card hands off to.
const DefaultSiteURL = "https://iguanaremovalpros.com"

const highRiskNote = "Professional removal recommended for established populations"

// SelectedRegion is the county currently shown in the details view.
type SelectedRegion struct {
	Name        string      `json:"name"`
	Tier        domain.Tier `json:"risk"`
	Rationale   string      `json:"rationale"`
	Source      string      `json:"source"`
	LastUpdated string      `json:"lastUpdated"`
}

// DetailsCard is the rendered content of the details view.
type DetailsCard struct {
	Name           string      `json:"name"`
	DisplayName    string      `json:"displayName"`
	Tier           domain.Tier `json:"risk"`
	Color          string      `json:"color"`
	Rationale      string      `json:"rationale"`
	Recommendation string      `json:"recommendation,omitempty"`
	Source         string      `json:"source"`
	Updated        string      `json:"updated"`
	CTALabel       string      `json:"ctaLabel"`
	HandoffURL     string      `json:"handoffUrl"`
	Note           string      `json:"note,omitempty"`
}

// NewDetailsCard builds the details view for a selection. The removal
// recommendation is only shown for High and Medium.
func NewDetailsCard(sel SelectedRegion, siteURL string) DetailsCard {
	display := domain.FormatCountyName(sel.Name)
	card := DetailsCard{
		Name:        domain.Normalize(sel.Name),
		DisplayName: display,
		Tier:        sel.Tier,
		Color:       sel.Tier.Color(),
		Rationale:   sel.Rationale,
		Source:      sel.Source,
		Updated:     FormatMonth(sel.LastUpdated),
		CTALabel:    "Find Providers in " + display,
		HandoffURL:  HandoffURL(siteURL, sel.Name),
	}
	if sel.Tier.Elevated() {
		card.Recommendation = sel.Tier.Info().Action
	}
	if sel.Tier == domain.TierHigh {
		card.Note = highRiskNote
	}
	return card
}

// HandoffURL builds the tracked provider search link for a county:
//
//	{base}/providers?county={name}&utm_source=riskmap&utm_medium=referral&utm_campaign=county_{slug}
//
// The county value is the normalized name, percent-encoded with %20 for
// spaces.
func HandoffURL(siteURL, county string) string {
	base := strings.TrimRight(siteURL, "/")
	if base == "" {
		base = DefaultSiteURL
	}
	name := domain.Normalize(county)
	return base + "/providers?county=" + escapeComponent(name) +
		"&utm_source=riskmap&utm_medium=referral&utm_campaign=county_" + escapeComponent(domain.Slug(name))
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// FormatMonth renders "YYYY-MM" as "November 2024". Other input is returned
// unchanged.
func FormatMonth(s string) string {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return s
	}
	return t.Format("January 2006")
}

// Legend returns the tiers in display order.
func Legend() []domain.TierInfo {
	return domain.Tiers()
}
