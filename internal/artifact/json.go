package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// WriteJSON encodes the lookup artifact with two-space indentation.
// Map keys are emitted in sorted order, so output is stable.
func WriteJSON(w io.Writer, lookup *domain.RiskLookup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(lookup); err != nil {
		return fmt.Errorf("encode lookup: %w", err)
	}
	return nil
}

// ReadJSON decodes a lookup artifact and indexes it for case-folded access.
// Tier colors are re-derived when absent.
func ReadJSON(r io.Reader) (*domain.RiskLookup, error) {
	var lookup domain.RiskLookup
	if err := json.NewDecoder(r).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("decode lookup: %w", err)
	}
	if lookup.Counties == nil {
		return nil, fmt.Errorf("decode lookup: missing counties")
	}
	for k, rec := range lookup.Counties {
		if _, ok := domain.ParseTier(string(rec.Tier)); !ok {
			return nil, fmt.Errorf("decode lookup: county %q: unknown risk level %q", k, rec.Tier)
		}
		if rec.Color == "" {
			rec.Color = rec.Tier.Color()
			lookup.Counties[k] = rec
		}
	}
	lookup.Index()
	return &lookup, nil
}
