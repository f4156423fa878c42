package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place so readers never observe a partial artifact.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// SaveCSV writes rows to path atomically.
func SaveCSV(path string, rows []Row) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// LoadCSV reads rows from path.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// SaveJSON writes the lookup artifact to path atomically.
func SaveJSON(path string, lookup *domain.RiskLookup) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, lookup); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// LoadJSON reads a lookup artifact from path.
func LoadJSON(path string) (*domain.RiskLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lookup, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lookup, nil
}

// RegenerateJSON rebuilds the lookup artifact from the CSV source of truth.
func RegenerateJSON(csvPath, jsonPath string, generatedAt time.Time) (*domain.RiskLookup, error) {
	rows, err := LoadCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("load csv: %w", err)
	}
	lookup := BuildLookup(RecordsFromRows(rows), generatedAt)
	if err := SaveJSON(jsonPath, lookup); err != nil {
		return nil, fmt.Errorf("save json: %w", err)
	}
	return lookup, nil
}
