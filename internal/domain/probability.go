package domain

import (
	"strconv"
	"strings"
)

// ProbabilityPoint is one row of the probability table.
type ProbabilityPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// ProbabilitySeries keeps the rows in file order.
type ProbabilitySeries []ProbabilityPoint

// CurrentProbability is the chronologically last probability.
type CurrentProbability struct {
	Date    Date    `json:"date"`
	Value   float64 `json:"value"`
	Percent string  `json:"percent"`
}

// Current returns the row with the greatest date (the later row on ties).
// ok is false for an empty series.
func (s ProbabilitySeries) Current() (cur CurrentProbability, ok bool) {
	if len(s) == 0 {
		return CurrentProbability{}, false
	}
	last := 0
	for i := 1; i < len(s); i++ {
		if !s[i].Date.Before(s[last].Date) {
			last = i
		}
	}
	p := s[last]
	return CurrentProbability{Date: p.Date, Value: p.Value, Percent: FormatPercent(p.Value)}, true
}

// FormatPercent renders a probability as a percentage rounded to two
// decimals, keeping at least one decimal: 0.8431 → "84.31%", 1 → "100.0%".
// Rounding is on the exact binary value with ties to even, so 0.00125
// renders as "0.12%".
func FormatPercent(v float64) string {
	pct, _ := strconv.ParseFloat(strconv.FormatFloat(v*100, 'f', 2, 64), 64)
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "%"
}
