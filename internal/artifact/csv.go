package artifact

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/couchcryptid/county-risk-map/internal/domain"
)

// CSVHeader is the column layout of the risk CSV.
var CSVHeader = []string{"county", "risk_level", "rationale", "primary_source", "last_updated"}

// ErrBadHeader is returned when a CSV does not start with CSVHeader.
var ErrBadHeader = errors.New("unexpected csv header")

// Row is one county line of the risk CSV.
type Row struct {
	County string
	Record domain.RiskRecord
	Line   int
}

// RowsFromRecords orders classified records by the fixed region set.
// Counties without a record get the unclassified default.
func RowsFromRecords(records map[string]domain.RiskRecord) []Row {
	rows := make([]Row, 0, len(domain.FloridaCounties))
	for _, county := range domain.FloridaCounties {
		rec, ok := records[county]
		if !ok {
			rec = defaultRecord()
		}
		rows = append(rows, Row{County: county, Record: rec})
	}
	return rows
}

// WriteCSV writes the header and one line per row. The rationale column is
// always quoted with embedded quotes doubled, matching the hand-edited file.
// Lines are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",")); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			quoteIfNeeded(r.County),
			quoteIfNeeded(string(r.Record.Tier)),
			quote(r.Record.Rationale),
			quoteIfNeeded(r.Record.Source),
			quoteIfNeeded(r.Record.LastUpdated),
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") || strings.HasPrefix(s, " ") {
		return quote(s)
	}
	return s
}

// ReadCSV parses a risk CSV. A wrong header, a short row, or an unknown risk
// level is an error; values are trimmed and colors derived from tiers.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if !slices.Equal(header, CSVHeader) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		tier, ok := domain.ParseTier(strings.TrimSpace(rec[1]))
		if !ok {
			return nil, fmt.Errorf("csv line %d: unknown risk level %q", line, rec[1])
		}
		rows = append(rows, Row{
			County: strings.TrimSpace(rec[0]),
			Line:   line,
			Record: domain.RiskRecord{
				Tier:        tier,
				Rationale:   strings.TrimSpace(rec[2]),
				Source:      strings.TrimSpace(rec[3]),
				LastUpdated: strings.TrimSpace(rec[4]),
				Color:       tier.Color(),
			},
		})
	}
	return rows, nil
}

// RecordsFromRows indexes rows by county name. Later duplicates win.
func RecordsFromRows(rows []Row) map[string]domain.RiskRecord {
	out := make(map[string]domain.RiskRecord, len(rows))
	for _, r := range rows {
		out[r.County] = r.Record
	}
	return out
}
