package domain

import "time"

// SeriesBundle hands the three independently dated series to presentation.
// No series is reindexed onto another's calendar: a date missing from one
// series is simply absent there. Joining or interpolating is the consumer's
// choice.
type SeriesBundle struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	RainfallAggregate  DailySeries         `json:"rainfall_aggregate"`
	RainfallPerStation StationSeries       `json:"rainfall_per_station"`
	DailyKeywordCount  []DailyKeywordCount `json:"daily_keyword_count"`
	ProbabilitySeries  ProbabilitySeries   `json:"probability_series"`
	CurrentProbability *CurrentProbability `json:"current_probability,omitempty"`
}

// AlignSeries bundles the series unchanged and stamps the run.
func AlignSeries(runID string, rain Rainfall, keywords []DailyKeywordCount, prob ProbabilitySeries) SeriesBundle {
	b := SeriesBundle{
		RunID:              runID,
		GeneratedAt:        clock.Now().UTC(),
		RainfallAggregate:  rain.Aggregate,
		RainfallPerStation: rain.PerStation,
		DailyKeywordCount:  keywords,
		ProbabilitySeries:  prob,
	}
	if cur, ok := prob.Current(); ok {
		b.CurrentProbability = &cur
	}
	return b
}

// Stations returns the selectable station names in file order.
func (b *SeriesBundle) Stations() []string {
	return b.RainfallPerStation.Stations
}
