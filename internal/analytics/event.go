// Package analytics records visitor interactions with the risk map and
// delivers them to a pluggable sink in batches.
package analytics

import (
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/google/uuid"
)

// Source is stamped on every event so the shared analytics tables can tell
// this site apart from the main site.
const Source = "risk_map_site"

// Kind identifies what an event records.
type Kind string

const (
	KindPageView       Kind = "page_view"
	KindCTAClick       Kind = "cta_click"
	KindMapInteraction Kind = "map_interaction"
)

// Kinds lists every event kind.
func Kinds() []Kind {
	return []Kind{KindPageView, KindCTAClick, KindMapInteraction}
}

// Event is one tracked interaction. Which optional fields are set depends
// on Kind: page views carry Page, CTA clicks carry CTAType and UTMCampaign,
// map interactions carry RiskLevel.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	Page        string    `json:"page,omitempty"`
	County      string    `json:"county,omitempty"`
	CTAType     string    `json:"cta_type,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	RiskLevel   string    `json:"risk_level,omitempty"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}

func newEvent(kind Kind) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Source:    Source,
		Timestamp: domain.Now().UTC(),
	}
}

// PageView builds a page view event. county is empty unless the page shows
// a county's details.
func PageView(page, county string) Event {
	e := newEvent(KindPageView)
	e.Page = page
	e.County = county
	return e
}

// CTAClick builds a call-to-action click event.
func CTAClick(ctaType, county, utmCampaign string) Event {
	e := newEvent(KindCTAClick)
	e.CTAType = ctaType
	e.County = county
	e.UTMCampaign = utmCampaign
	return e
}

// Selection builds a map interaction event for a county selection.
func Selection(county string, tier domain.Tier) Event {
	e := newEvent(KindMapInteraction)
	e.County = county
	e.RiskLevel = string(tier)
	return e
}
