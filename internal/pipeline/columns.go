package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Timestamp layouts accepted per source. The first entry is the layout the
// upstream exports use; the rest cover the same instant written by
// spreadsheet tools.
var (
	rainfallLayouts = []string{
		"02/01/2006-15:04:05",
		"02/01/2006 15:04:05",
		"02/01/2006-15:04",
	}
	postLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02T15:04:05",
		time.RFC3339,
	}
)

// parseInstant parses a timestamp cell against layouts. Offsets are kept as
// written so the calendar date is the wall-clock date of the source.
func parseInstant(file string, row domain.Row, col int, column string, layouts []string) (time.Time, error) {
	raw := row.Field(col)
	if raw == "" {
		return time.Time{}, domain.NewParseError(file, row.Line, column, raw, fmt.Errorf("empty timestamp"))
	}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, domain.NewParseError(file, row.Line, column, raw, fmt.Errorf("want layout %q: %w", layouts[0], firstErr))
}

// parseReading parses a numeric cell. Empty cells read as zero; "2,5" is
// accepted as a decimal comma when no dot is present.
func parseReading(file string, row domain.Row, col int, column string) (float64, error) {
	raw := row.Field(col)
	if raw == "" {
		return 0, nil
	}
	return parseNumber(file, row, column, raw)
}

func parseNumber(file string, row domain.Row, column, raw string) (float64, error) {
	s := raw
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewTypeError(file, row.Line, column, raw)
	}
	return v, nil
}

// checkWidth rejects rows carrying more cells than the header names.
func checkWidth(tbl *domain.Table, row domain.Row) error {
	if len(row.Fields) <= len(tbl.Header) {
		return nil
	}
	for _, f := range row.Fields[len(tbl.Header):] {
		if strings.TrimSpace(f) != "" {
			return domain.NewParseError(tbl.Name, row.Line, "", "",
				fmt.Errorf("row has %d fields, header has %d", len(row.Fields), len(tbl.Header)))
		}
	}
	return nil
}
