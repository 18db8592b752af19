// Package report prints a run's series as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Probability levels used to color the current probability.
const (
	highProbability     = 0.7
	moderateProbability = 0.4
)

// Printer writes run summaries.
type Printer struct {
	out     io.Writer
	heading *color.Color
	ok      *color.Color
	warn    *color.Color
	bad     *color.Color
	// ProbabilityTail is how many trailing probability rows to print; 0 prints all.
	ProbabilityTail int
}

// NewPrinter creates a printer. Colors are emitted only when useColors is set.
func NewPrinter(w io.Writer, useColors bool) *Printer {
	p := &Printer{
		out:             w,
		heading:         color.New(color.FgCyan, color.Bold),
		ok:              color.New(color.FgGreen),
		warn:            color.New(color.FgYellow),
		bad:             color.New(color.FgRed, color.Bold),
		ProbabilityTail: 10,
	}
	for _, c := range []*color.Color{p.heading, p.ok, p.warn, p.bad} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Summary prints the rainfall, keyword and probability sections. stations
// restricts the per-station columns; empty means every station.
func (p *Printer) Summary(b domain.SeriesBundle, stations []string) error {
	p.heading.Fprintf(p.out, "Run %s (generated %s)\n\n", b.RunID, b.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if err := p.rainfall(b, stations); err != nil {
		return err
	}
	if err := p.keywords(b); err != nil {
		return err
	}
	if err := p.probability(b); err != nil {
		return err
	}
	return nil
}

func (p *Printer) rainfall(b domain.SeriesBundle, stations []string) error {
	per, err := b.RainfallPerStation.Select(stations...)
	if err != nil {
		return err
	}
	p.heading.Fprintf(p.out, "Rainfall (mm/day, %d days)\n", len(b.RainfallAggregate))

	header := append([]string{"date", "total"}, per.Stations...)
	rows := make([][]string, 0, len(b.RainfallAggregate))
	for i, v := range b.RainfallAggregate {
		row := []string{v.Date.String(), formatMM(v.Value)}
		if i < len(per.Rows) {
			for _, name := range per.Stations {
				row = append(row, formatMM(per.Rows[i].Values[name]))
			}
		}
		rows = append(rows, row)
	}
	if err := renderTable(p.out, header, rows); err != nil {
		return fmt.Errorf("render rainfall: %w", err)
	}
	fmt.Fprintf(p.out, "total: %s mm\n\n", formatMM(b.RainfallAggregate.Total()))
	return nil
}

func (p *Printer) keywords(b domain.SeriesBundle) error {
	p.heading.Fprintf(p.out, "Keyword incidence (%d days)\n", len(b.DailyKeywordCount))

	rows := make([][]string, 0, len(b.DailyKeywordCount))
	total := 0
	for _, c := range b.DailyKeywordCount {
		rows = append(rows, []string{c.Date.String(), strconv.Itoa(c.Count)})
		total += c.Count
	}
	if err := renderTable(p.out, []string{"date", "hits"}, rows); err != nil {
		return fmt.Errorf("render keywords: %w", err)
	}
	fmt.Fprintf(p.out, "total: %d hits\n\n", total)
	return nil
}

func (p *Printer) probability(b domain.SeriesBundle) error {
	series := b.ProbabilitySeries
	if p.ProbabilityTail > 0 && len(series) > p.ProbabilityTail {
		series = series[len(series)-p.ProbabilityTail:]
	}
	p.heading.Fprintf(p.out, "Flood probability (last %d of %d rows)\n", len(series), len(b.ProbabilitySeries))

	rows := make([][]string, 0, len(series))
	for _, pt := range series {
		rows = append(rows, []string{pt.Date.String(), strconv.FormatFloat(pt.Value, 'f', -1, 64), domain.FormatPercent(pt.Value)})
	}
	if err := renderTable(p.out, []string{"date", "value", "percent"}, rows); err != nil {
		return fmt.Errorf("render probability: %w", err)
	}

	cur := b.CurrentProbability
	if cur == nil {
		p.warn.Fprintln(p.out, "current probability: n/a")
		return nil
	}
	fmt.Fprint(p.out, "current probability: ")
	p.level(cur.Value).Fprintf(p.out, "%s", cur.Percent)
	fmt.Fprintf(p.out, " (%s)\n", cur.Date)
	return nil
}

func (p *Printer) level(v float64) *color.Color {
	switch {
	case v >= highProbability:
		return p.bad
	case v >= moderateProbability:
		return p.warn
	default:
		return p.ok
	}
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
