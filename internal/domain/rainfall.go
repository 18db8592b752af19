package domain

import (
	"fmt"
	"slices"
	"time"
)

// RainfallRecord is one sub-daily gauge reading row.
type RainfallRecord struct {
	Timestamp time.Time
	// StationValues is indexed like RainfallTable.Stations.
	StationValues []float64
	Aggregate     float64
}

// RainfallTable holds typed rainfall rows in file order.
type RainfallTable struct {
	Stations        []string
	AggregateColumn string
	Records         []RainfallRecord
}

// DailyValue is one day of a numeric series.
type DailyValue struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// DailySeries is a date-ascending series with one value per day present.
type DailySeries []DailyValue

// StationRow is one day of per-station totals, keyed by station name.
type StationRow struct {
	Date   Date               `json:"date"`
	Values map[string]float64 `json:"values"`
}

// StationSeries is the per-station daily table. Stations keeps the column
// order of the source file.
type StationSeries struct {
	Stations []string     `json:"stations"`
	Rows     []StationRow `json:"rows"`
}

// Rainfall is the resampled rainfall split into its aggregate and
// per-station parts. Both share the same date index.
type Rainfall struct {
	AggregateColumn string        `json:"aggregate_column"`
	Aggregate       DailySeries   `json:"aggregate"`
	PerStation      StationSeries `json:"per_station"`
}

// ResampleDaily sums every reading falling on the same calendar day, per
// column. The output holds exactly the days present in the input, ascending.
func ResampleDaily(tbl RainfallTable) Rainfall {
	type bucket struct {
		stations  []float64
		aggregate float64
	}

	buckets := make(map[Date]*bucket)
	for i := range tbl.Records {
		rec := &tbl.Records[i]
		day := DateOf(rec.Timestamp)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{stations: make([]float64, len(tbl.Stations))}
			buckets[day] = b
		}
		for j, v := range rec.StationValues {
			if j < len(b.stations) {
				b.stations[j] += v
			}
		}
		b.aggregate += rec.Aggregate
	}

	days := make([]Date, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	slices.SortFunc(days, Date.Compare)

	out := Rainfall{
		AggregateColumn: tbl.AggregateColumn,
		Aggregate:       make(DailySeries, 0, len(days)),
		PerStation: StationSeries{
			Stations: slices.Clone(tbl.Stations),
			Rows:     make([]StationRow, 0, len(days)),
		},
	}
	for _, d := range days {
		b := buckets[d]
		out.Aggregate = append(out.Aggregate, DailyValue{Date: d, Value: b.aggregate})

		values := make(map[string]float64, len(tbl.Stations))
		for j, name := range tbl.Stations {
			values[name] = b.stations[j]
		}
		out.PerStation.Rows = append(out.PerStation.Rows, StationRow{Date: d, Values: values})
	}
	return out
}

// Select restricts the table to the given stations, in the requested order.
// An empty selection returns every station. Unknown names are a schema error.
func (s StationSeries) Select(stations ...string) (StationSeries, error) {
	if len(stations) == 0 {
		return s, nil
	}

	known := make(map[string]bool, len(s.Stations))
	for _, name := range s.Stations {
		known[name] = true
	}
	picked := make([]string, 0, len(stations))
	seen := make(map[string]bool, len(stations))
	for _, name := range stations {
		if !known[name] {
			return StationSeries{}, NewSchemaError("rainfall", name, fmt.Sprintf("unknown station (have %d stations)", len(s.Stations)))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		picked = append(picked, name)
	}

	out := StationSeries{Stations: picked, Rows: make([]StationRow, 0, len(s.Rows))}
	for _, row := range s.Rows {
		values := make(map[string]float64, len(picked))
		for _, name := range picked {
			values[name] = row.Values[name]
		}
		out.Rows = append(out.Rows, StationRow{Date: row.Date, Values: values})
	}
	return out, nil
}

// Total sums the series values.
func (s DailySeries) Total() float64 {
	var sum float64
	for _, v := range s {
		sum += v.Value
	}
	return sum
}
