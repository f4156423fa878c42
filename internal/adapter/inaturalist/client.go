// Package inaturalist fetches green iguana observations from the iNaturalist
// v1 observations API.
package inaturalist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/config"
	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/observability"
	"golang.org/x/time/rate"
)

const dateLayout = "2006-01-02"

// ErrMalformedResponse marks a response body that is not valid observations JSON.
var ErrMalformedResponse = errors.New("malformed iNaturalist response")

// Client pages through research-grade observations sequentially, waiting on
// a rate limiter before every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	taxonID    int
	placeID    int
	perPage    int
	maxPages   int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an iNaturalist client from the INAT_* settings.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.INatBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.INatTimeout,
		},
		limiter:  newLimiter(cfg.INatRequestDelay),
		taxonID:  cfg.INatTaxonID,
		placeID:  cfg.INatPlaceID,
		perPage:  cfg.INatPerPage,
		maxPages: cfg.INatMaxPages,
		metrics:  metrics,
		logger:   logger,
	}
}

// newLimiter allows one request immediately and then one per delay.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// FetchObservations returns the observations dated between from and to.
//
// Pagination stops on an empty page, when total_results is exhausted, or at
// the page cap. A failed request after at least one page was collected stops
// pagination and returns what was collected; a failure before that, a
// malformed body, or a cancelled context is an error.
func (c *Client) FetchObservations(ctx context.Context, from, to time.Time) ([]domain.Observation, error) {
	var observations []domain.Observation

	for page := 1; page <= c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for page %d: %w", page, err)
		}

		resp, err := c.fetchPage(ctx, from, to, page)
		if err != nil {
			c.metrics.FetchErrors.Inc()
			if errors.Is(err, ErrMalformedResponse) || ctx.Err() != nil || len(observations) == 0 {
				return nil, err
			}
			c.logger.Warn("stopping pagination after fetch error",
				"page", page, "collected", len(observations), "error", err)
			break
		}
		c.metrics.FetchPages.Inc()

		if len(resp.Results) == 0 {
			break
		}
		for _, r := range resp.Results {
			observations = append(observations, r.observation(c.logger))
		}
		c.logger.Debug("fetched observation page",
			"page", page, "results", len(resp.Results), "total_results", resp.TotalResults)

		if resp.TotalResults <= page*c.perPage {
			break
		}
		if page == c.maxPages {
			c.logger.Info("page cap reached", "max_pages", c.maxPages, "total_results", resp.TotalResults)
		}
	}

	c.metrics.ObservationsFetched.Add(float64(len(observations)))
	return observations, nil
}

func (c *Client) pageURL(from, to time.Time, page int) string {
	params := url.Values{
		"taxon_id":      {strconv.Itoa(c.taxonID)},
		"place_id":      {strconv.Itoa(c.placeID)},
		"quality_grade": {"research"},
		"d1":            {from.UTC().Format(dateLayout)},
		"d2":            {to.UTC().Format(dateLayout)},
		"per_page":      {strconv.Itoa(c.perPage)},
		"page":          {strconv.Itoa(page)},
	}
	return c.baseURL + "/observations?" + params.Encode()
}

func (c *Client) fetchPage(ctx context.Context, from, to time.Time, page int) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(from, to, page), nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return response{}, fmt.Errorf("observations page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return response{}, fmt.Errorf("iNaturalist API error: page %d: status %d: %s", page, resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("%w: page %d: %w", ErrMalformedResponse, page, err)
	}
	return out, nil
}

// iNaturalist API response types.

type response struct {
	TotalResults int      `json:"total_results"`
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
	Results      []result `json:"results"`
}

type result struct {
	ID         int64   `json:"id"`
	ObservedOn *string `json:"observed_on"`
	PlaceGuess *string `json:"place_guess"`
}

func (r result) observation(logger *slog.Logger) domain.Observation {
	obs := domain.Observation{ID: r.ID}
	if r.PlaceGuess != nil {
		obs.PlaceGuess = *r.PlaceGuess
	}
	if r.ObservedOn != nil && *r.ObservedOn != "" {
		t, err := time.Parse(dateLayout, *r.ObservedOn)
		if err != nil {
			logger.Debug("unparseable observed_on", "id", r.ID, "observed_on", *r.ObservedOn)
		} else {
			obs.ObservedOn = t
		}
	}
	return obs
}
