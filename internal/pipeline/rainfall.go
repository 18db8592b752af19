package pipeline

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// RainfallLoader types a rainfall table and resamples it to daily totals.
// The first column is the reading timestamp; every other column is a
// numeric gauge reading. One of them is the citywide aggregate.
type RainfallLoader struct {
	// AggregateColumn names the aggregate header. Empty means the last column.
	AggregateColumn string
}

// NewRainfallLoader returns a loader using the given aggregate column.
func NewRainfallLoader(aggregateColumn string) *RainfallLoader {
	return &RainfallLoader{AggregateColumn: strings.TrimSpace(aggregateColumn)}
}

// Load parses, resamples and splits tbl.
func (l *RainfallLoader) Load(tbl *domain.Table) (domain.Rainfall, error) {
	typed, err := l.Parse(tbl)
	if err != nil {
		return domain.Rainfall{}, err
	}
	return domain.ResampleDaily(typed), nil
}

// Parse validates the header and converts every row to a RainfallRecord.
// The first bad cell aborts the parse.
func (l *RainfallLoader) Parse(tbl *domain.Table) (domain.RainfallTable, error) {
	aggIdx, err := l.aggregateIndex(tbl)
	if err != nil {
		return domain.RainfallTable{}, err
	}

	stationIdx := make([]int, 0, len(tbl.Header)-2)
	stations := make([]string, 0, len(tbl.Header)-2)
	seen := make(map[string]bool, len(tbl.Header))
	for i := 1; i < len(tbl.Header); i++ {
		if i == aggIdx {
			continue
		}
		name := strings.TrimSpace(tbl.Header[i])
		if name == "" {
			return domain.RainfallTable{}, domain.NewSchemaError(tbl.Name, fmt.Sprintf("#%d", i+1), "station column has no name")
		}
		if seen[name] {
			return domain.RainfallTable{}, domain.NewSchemaError(tbl.Name, name, "duplicate station column")
		}
		seen[name] = true
		stationIdx = append(stationIdx, i)
		stations = append(stations, name)
	}

	tsColumn := strings.TrimSpace(tbl.Header[0])
	aggColumn := strings.TrimSpace(tbl.Header[aggIdx])
	out := domain.RainfallTable{
		Stations:        stations,
		AggregateColumn: aggColumn,
		Records:         make([]domain.RainfallRecord, 0, len(tbl.Rows)),
	}
	for _, row := range tbl.Rows {
		if err := checkWidth(tbl, row); err != nil {
			return domain.RainfallTable{}, err
		}
		ts, err := parseInstant(tbl.Name, row, 0, tsColumn, rainfallLayouts)
		if err != nil {
			return domain.RainfallTable{}, err
		}
		rec := domain.RainfallRecord{
			Timestamp:     ts,
			StationValues: make([]float64, len(stationIdx)),
		}
		for j, col := range stationIdx {
			if rec.StationValues[j], err = parseReading(tbl.Name, row, col, stations[j]); err != nil {
				return domain.RainfallTable{}, err
			}
		}
		if rec.Aggregate, err = parseReading(tbl.Name, row, aggIdx, aggColumn); err != nil {
			return domain.RainfallTable{}, err
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func (l *RainfallLoader) aggregateIndex(tbl *domain.Table) (int, error) {
	if len(tbl.Header) < 2 {
		return 0, domain.NewSchemaError(tbl.Name, "", "need a timestamp column and at least one reading column")
	}
	if l.AggregateColumn == "" {
		return len(tbl.Header) - 1, nil
	}
	idx, ok := tbl.ColumnIndex(l.AggregateColumn)
	if !ok {
		return 0, domain.NewSchemaError(tbl.Name, l.AggregateColumn, "aggregate column not found")
	}
	if idx == 0 {
		return 0, domain.NewSchemaError(tbl.Name, l.AggregateColumn, "aggregate column cannot be the timestamp column")
	}
	return idx, nil
}
