package pipeline

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// ProbabilityLoader types the precomputed probability table: the first
// column is the date index and the last column holds the value.
type ProbabilityLoader struct{}

// Load parses tbl into a series in file order. Values must lie in [0,1].
func (ProbabilityLoader) Load(tbl *domain.Table) (domain.ProbabilitySeries, error) {
	if len(tbl.Header) < 2 {
		return nil, domain.NewSchemaError(tbl.Name, "", "need a date column and a probability column")
	}
	dateColumn := strings.TrimSpace(tbl.Header[0])
	valueIdx := len(tbl.Header) - 1
	valueColumn := strings.TrimSpace(tbl.Header[valueIdx])

	out := make(domain.ProbabilitySeries, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if err := checkWidth(tbl, row); err != nil {
			return nil, err
		}
		rawDate := row.Field(0)
		date, err := domain.ParseDate(rawDate)
		if err != nil {
			return nil, domain.NewParseError(tbl.Name, row.Line, dateColumn, rawDate, err)
		}
		raw := row.Field(valueIdx)
		if raw == "" {
			return nil, domain.NewTypeError(tbl.Name, row.Line, valueColumn, raw)
		}
		v, err := parseNumber(tbl.Name, row, valueColumn, raw)
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 1 {
			return nil, domain.NewRangeError(tbl.Name, row.Line, valueColumn, raw, fmt.Sprintf("probability must be within [0,1], got %g", v))
		}
		out = append(out, domain.ProbabilityPoint{Date: date, Value: v})
	}
	return out, nil
}
