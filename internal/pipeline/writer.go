package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/artifact"
	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// FileWriter writes the CSV source of truth and regenerates the JSON lookup
// from it, so the published JSON always reflects what the CSV says.
type FileWriter struct {
	CSVPath  string
	JSONPath string
}

// WriteArtifacts implements ArtifactWriter.
func (w FileWriter) WriteArtifacts(ctx context.Context, records map[string]domain.RiskRecord, generatedAt time.Time) (*domain.RiskLookup, error) {
	if err := artifact.SaveCSV(w.CSVPath, artifact.RowsFromRecords(records)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return artifact.RegenerateJSON(w.CSVPath, w.JSONPath, generatedAt)
}
