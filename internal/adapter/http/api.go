package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/riskmap"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Event intake limits shared by all clients.
const (
	eventsPerSecond = 20
	eventsBurst     = 40
	maxEventBody    = 4 << 10
)

// ctaFindProviders is the CTA type recorded for provider handoffs.
const ctaFindProviders = "find_providers"

// Tracker records visitor interactions. Implementations must not block.
type Tracker interface {
	TrackPageView(page, county string)
	TrackCTAClick(ctaType, county, utmCampaign string)
	TrackSelection(county string, tier domain.Tier)
}

// API serves the risk lookup, the joined map layer and county details.
type API struct {
	lookup  *domain.RiskLookup
	layer   *riskmap.Layer
	tracker Tracker
	siteURL string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewAPI creates the API handlers. An empty siteURL uses the default site.
func NewAPI(lookup *domain.RiskLookup, layer *riskmap.Layer, tracker Tracker, siteURL string, logger *slog.Logger) *API {
	if siteURL == "" {
		siteURL = riskmap.DefaultSiteURL
	}
	return &API{
		lookup:  lookup,
		layer:   layer,
		tracker: tracker,
		siteURL: siteURL,
		limiter: rate.NewLimiter(eventsPerSecond, eventsBurst),
		logger:  logger,
	}
}

// Routes mounts the API on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/risk", a.handleRisk)
		r.Get("/legend", a.handleLegend)
		r.Get("/map/layer", a.handleLayer)
		r.Get("/map/hit", a.handleHit)
		r.Get("/counties/{name}", a.handleCounty)
		r.Route("/events", func(r chi.Router) {
			r.Use(a.limitEvents)
			r.Post("/pageview", a.handlePageView)
			r.Post("/selection", a.handleSelection)
		})
	})
	r.Get("/providers/{name}", a.handleProviders)
}

type layerResponse struct {
	Viewport riskmap.Viewport  `json:"viewport"`
	Bounds   riskmap.Bounds    `json:"bounds"`
	Features []riskmap.Feature `json:"features"`
	Misses   []string          `json:"misses"`
}

type legendResponse struct {
	Tiers []domain.TierInfo `json:"tiers"`
}

type pageViewRequest struct {
	Page   string `json:"page"`
	County string `json:"county,omitempty"`
}

type selectionRequest struct {
	County string `json:"county"`
}

func (a *API) handleRisk(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.lookup)
}

func (a *API) handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, legendResponse{Tiers: riskmap.Legend()})
}

func (a *API) handleLayer(w http.ResponseWriter, _ *http.Request) {
	misses := a.layer.Misses()
	if misses == nil {
		misses = []string{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, layerResponse{
		Viewport: riskmap.DefaultViewport,
		Bounds:   a.layer.Bounds(),
		Features: a.layer.Features(),
		Misses:   misses,
	})
}

// handleHit returns the details card of the matched county under a point and
// records the selection. It answers 204 when no matched county covers it.
func (a *API) handleHit(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}

	i, ok := a.layer.HitTest(riskmap.LatLng{Lat: lat, Lng: lng})
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	f, _ := a.layer.Feature(i)
	sel, ok := f.Selection()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.tracker.TrackSelection(f.Key, sel.Tier)
	sharedobs.WriteJSON(w, http.StatusOK, riskmap.NewDetailsCard(sel, a.siteURL))
}

func (a *API) handleCounty(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "county not found")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, riskmap.NewDetailsCard(sel, a.siteURL))
}

// handleProviders records the CTA click and redirects to the provider
// search on the main site.
func (a *API) handleProviders(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "county not found")
		return
	}
	county := domain.Normalize(sel.Name)
	a.tracker.TrackCTAClick(ctaFindProviders, county, "county_"+domain.Slug(county))
	http.Redirect(w, r, riskmap.HandoffURL(a.siteURL, county), http.StatusFound)
}

func (a *API) handlePageView(w http.ResponseWriter, r *http.Request) {
	var req pageViewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Page == "" {
		writeError(w, http.StatusBadRequest, "page is required")
		return
	}
	county := ""
	if req.County != "" {
		c, ok := domain.CanonicalRegion(req.County)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown county")
			return
		}
		county = c
	}
	a.tracker.TrackPageView(req.Page, county)
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sel, ok := a.selection(req.County)
	if !ok {
		writeError(w, http.StatusNotFound, "county not found")
		return
	}
	a.tracker.TrackSelection(domain.Normalize(sel.Name), sel.Tier)
	w.WriteHeader(http.StatusAccepted)
}

// selection resolves a county name to the joined feature's selection.
func (a *API) selection(name string) (riskmap.SelectedRegion, bool) {
	if name == "" {
		return riskmap.SelectedRegion{}, false
	}
	f, ok := a.layer.Find(name)
	if !ok {
		return riskmap.SelectedRegion{}, false
	}
	return f.Selection()
}

func (a *API) limitEvents(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
