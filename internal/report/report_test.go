package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) domain.Date { return domain.Date{Year: 2024, Month: time.February, Day: day} }

func testBundle() domain.SeriesBundle {
	return domain.SeriesBundle{
		RunID:             "run-1",
		GeneratedAt:       time.Date(2024, time.February, 5, 6, 0, 0, 0, time.UTC),
		RainfallAggregate: domain.DailySeries{{Date: d(1), Value: 5.5}, {Date: d(4), Value: 50}},
		RainfallPerStation: domain.StationSeries{
			Stations: []string{"Centro", "Garcia"},
			Rows: []domain.StationRow{
				{Date: d(1), Values: map[string]float64{"Centro": 3, "Garcia": 2.25}},
				{Date: d(4), Values: map[string]float64{"Centro": 12.5, "Garcia": 15}},
			},
		},
		DailyKeywordCount:  []domain.DailyKeywordCount{{Date: d(1), Count: 5}, {Date: d(2), Count: 0}},
		ProbabilitySeries:  domain.ProbabilitySeries{{Date: d(1), Value: 0.12}, {Date: d(4), Value: 0.8431}},
		CurrentProbability: &domain.CurrentProbability{Date: d(4), Value: 0.8431, Percent: "84.31%"},
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Summary(testBundle(), nil))

	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "2024-02-01")
	assert.Contains(t, out, "5.50")
	assert.Contains(t, out, "2.25")
	assert.Contains(t, out, "total: 55.50 mm")
	assert.Contains(t, out, "total: 5 hits")
	assert.Contains(t, out, "current probability: 84.31% (2024-02-04)")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when colors are off")
}

func TestSummary_StationSubset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Summary(testBundle(), []string{"Garcia"}))
	assert.NotContains(t, buf.String(), "12.50")
	assert.Contains(t, buf.String(), "15.00")
}

func TestSummary_UnknownStation(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf, false).Summary(testBundle(), []string{"Atlantis"})
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestSummary_NoProbability(t *testing.T) {
	b := testBundle()
	b.ProbabilitySeries = nil
	b.CurrentProbability = nil

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Summary(b, nil))
	assert.Contains(t, buf.String(), "current probability: n/a")
}

func TestSummary_ProbabilityTail(t *testing.T) {
	b := testBundle()
	p := NewPrinter(&bytes.Buffer{}, false)
	p.ProbabilityTail = 1

	var buf bytes.Buffer
	p.out = &buf
	require.NoError(t, p.Summary(b, nil))
	assert.Contains(t, buf.String(), "last 1 of 2 rows")
	assert.NotContains(t, buf.String(), "12.0%")
}

func TestSummary_Colors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, true).Summary(testBundle(), nil))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestLevel(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, false)
	assert.Same(t, p.bad, p.level(0.9))
	assert.Same(t, p.warn, p.level(0.4))
	assert.Same(t, p.ok, p.level(0.1))
}
