package kafka

import (
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Series names carried by DailySignal.Series.
const (
	SeriesRainfallAggregate  = "rainfall_aggregate"
	SeriesRainfallPerStation = "rainfall_per_station"
	SeriesKeywordCount       = "daily_keyword_count"
	SeriesProbability        = "probability_series"
)

// DailySignal is one point of one series, the unit published to Kafka.
type DailySignal struct {
	Series  string      `json:"series"`
	Date    domain.Date `json:"date"`
	Station string      `json:"station,omitempty"`
	Value   float64     `json:"value"`
	RunID   string      `json:"run_id"`
}

// Key identifies the point: series|date, plus |station for station rows.
func (s DailySignal) Key() string {
	k := s.Series + "|" + s.Date.String()
	if s.Station != "" {
		k += "|" + s.Station
	}
	return k
}

// Flatten expands a bundle into daily signals: aggregate rainfall, then
// per-station rainfall in station column order, then keyword counts, then
// probability in file order.
func Flatten(b domain.SeriesBundle) []DailySignal {
	n := len(b.RainfallAggregate) + len(b.RainfallPerStation.Rows)*len(b.RainfallPerStation.Stations) +
		len(b.DailyKeywordCount) + len(b.ProbabilitySeries)
	out := make([]DailySignal, 0, n)

	for _, v := range b.RainfallAggregate {
		out = append(out, DailySignal{Series: SeriesRainfallAggregate, Date: v.Date, Value: v.Value, RunID: b.RunID})
	}
	for _, row := range b.RainfallPerStation.Rows {
		for _, station := range b.RainfallPerStation.Stations {
			out = append(out, DailySignal{
				Series:  SeriesRainfallPerStation,
				Date:    row.Date,
				Station: station,
				Value:   row.Values[station],
				RunID:   b.RunID,
			})
		}
	}
	for _, c := range b.DailyKeywordCount {
		out = append(out, DailySignal{Series: SeriesKeywordCount, Date: c.Date, Value: float64(c.Count), RunID: b.RunID})
	}
	for _, p := range b.ProbabilitySeries {
		out = append(out, DailySignal{Series: SeriesProbability, Date: p.Date, Value: p.Value, RunID: b.RunID})
	}
	return out
}
