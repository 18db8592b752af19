// Command validate runs the pipeline over a set of input files and checks
// every output series against values re-derived directly from the raw rows:
// daily rainfall sums, duplicate handling, keyword tallies and probability
// ordering and formatting.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -rainfall data/mock/pluvio_out.csv \
//	  -posts data/mock/tweets_out.csv \
//	  -probability data/mock/probabilidade.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-signal-etl/internal/adapter/tabular"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	"github.com/couchcryptid/flood-signal-etl/internal/pipeline"
)

const tolerance = 1e-9

var percentRe = regexp.MustCompile(`^\d+\.\d{1,2}%$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// inputs holds the raw tables and the bundle built from them.
type inputs struct {
	rainfall    *domain.Table
	posts       *domain.Table
	probability *domain.Table
	aggregate   string
	vocab       *domain.Vocabulary
	bundle      domain.SeriesBundle
}

func main() {
	rainfall := flag.String("rainfall", "data/mock/pluvio_out.csv", "rainfall file")
	posts := flag.String("posts", "data/mock/tweets_out.csv", "posts file")
	probability := flag.String("probability", "data/mock/probabilidade.csv", "probability file")
	delimiter := flag.String("delimiter", ",", "field delimiter for delimited files")
	aggregate := flag.String("aggregate-column", "", "rainfall aggregate column (default: last)")
	flag.Parse()

	if len([]rune(*delimiter)) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(pipeline.Sources{Rainfall: *rainfall, Posts: *posts, Probability: *probability}, []rune(*delimiter)[0], *aggregate))
}

func run(src pipeline.Sources, delimiter rune, aggregate string) int {
	// Fixed clock so repeated validations produce identical bundles.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Flood Signal Integrity Validation ===")
	fmt.Println()

	in, err := load(src, delimiter, aggregate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateRainfall(in),
		validateDeduplication(in),
		validateKeywords(in),
		validateProbability(in),
	}

	// ── Report results ──
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail(fmt.Sprintf("FAIL (%d errors)", len(p.errors)))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d rainfall, %d posts, %d probability\n",
		len(in.rainfall.Rows), len(in.posts.Rows), len(in.probability.Rows))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func load(src pipeline.Sources, delimiter rune, aggregate string) (*inputs, error) {
	ctx := context.Background()
	reader := tabular.NewReader(delimiter, "")

	in := &inputs{aggregate: aggregate, vocab: domain.NewVocabulary(domain.DefaultKeywords, nil)}
	var err error
	if in.rainfall, err = reader.ReadTable(ctx, src.Rainfall); err != nil {
		return nil, fmt.Errorf("read rainfall: %w", err)
	}
	if in.posts, err = reader.ReadTable(ctx, src.Posts); err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	if in.probability, err = reader.ReadTable(ctx, src.Probability); err != nil {
		return nil, fmt.Errorf("read probability: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	p := pipeline.New(reader, pipeline.Options{
		Sources:         src,
		AggregateColumn: aggregate,
		Keywords:        domain.DefaultKeywords,
		DedupPolicy:     domain.DedupFileOrder,
	}, logger, observability.NewMetricsForTesting())
	if in.bundle, err = p.Run(ctx); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	return in, nil
}

// ── Phase 1: rainfall ──

// validateRainfall re-sums the raw rows by the dd/mm/yyyy prefix of the
// timestamp cell.
func validateRainfall(in *inputs) *phase {
	p := &phase{name: "Phase 1: Rainfall daily resampling"}
	tbl := in.rainfall

	aggIdx := len(tbl.Header) - 1
	if in.aggregate != "" {
		idx, ok := tbl.ColumnIndex(in.aggregate)
		if !ok {
			p.errorf("aggregate column %q not in header", in.aggregate)
			return p
		}
		aggIdx = idx
	}

	sums := map[string]map[int]float64{}
	for _, row := range tbl.Rows {
		ts := row.Field(0)
		if len(ts) < 10 {
			p.errorf("row %d: short timestamp %q", row.Line, ts)
			continue
		}
		dd, mm, yyyy := ts[0:2], ts[3:5], ts[6:10]
		key := yyyy + "-" + mm + "-" + dd
		if sums[key] == nil {
			sums[key] = map[int]float64{}
		}
		for c := 1; c < len(tbl.Header); c++ {
			if s := strings.Replace(row.Field(c), ",", ".", 1); s != "" {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					p.errorf("row %d column %q: %q is not numeric", row.Line, tbl.Header[c], row.Field(c))
				}
				sums[key][c] += v
			}
		}
	}

	b := in.bundle
	if len(b.RainfallAggregate) != len(sums) {
		p.errorf("aggregate has %d days, raw rows cover %d", len(b.RainfallAggregate), len(sums))
	}
	if len(b.RainfallPerStation.Rows) != len(b.RainfallAggregate) {
		p.errorf("per-station has %d days, aggregate has %d", len(b.RainfallPerStation.Rows), len(b.RainfallAggregate))
	}
	for i, v := range b.RainfallAggregate {
		if i > 0 && !b.RainfallAggregate[i-1].Date.Before(v.Date) {
			p.errorf("aggregate dates not strictly ascending at %s", v.Date)
		}
		raw, ok := sums[v.Date.String()]
		if !ok {
			p.errorf("aggregate day %s has no source rows", v.Date)
			continue
		}
		if math.Abs(raw[aggIdx]-v.Value) > tolerance {
			p.errorf("%s aggregate: got %g, raw sum %g", v.Date, v.Value, raw[aggIdx])
		}
		if i >= len(b.RainfallPerStation.Rows) {
			continue
		}
		row := b.RainfallPerStation.Rows[i]
		for c := 1; c < len(tbl.Header); c++ {
			if c == aggIdx {
				continue
			}
			name := tbl.Header[c]
			if got := row.Values[name]; math.Abs(raw[c]-got) > tolerance {
				p.errorf("%s station %q: got %g, raw sum %g", v.Date, name, got, raw[c])
			}
		}
	}
	return p
}

// ── Phase 2: deduplication ──

func validateDeduplication(in *inputs) *phase {
	p := &phase{name: "Phase 2: Post deduplication"}

	posts, err := pipeline.ParsePosts(in.posts)
	if err != nil {
		p.errorf("parse posts: %v", err)
		return p
	}

	lastLine := map[string]int{}
	for _, post := range posts {
		lastLine[post.ID] = post.Line
	}

	unique := domain.Deduplicate(posts, domain.DedupFileOrder)
	if len(unique) != len(lastLine) {
		p.errorf("dedup kept %d posts, %d distinct ids", len(unique), len(lastLine))
	}
	for _, post := range unique {
		if post.Line != lastLine[post.ID] {
			p.errorf("id %s: kept line %d, last occurrence is line %d", post.ID, post.Line, lastLine[post.ID])
		}
	}
	again := domain.Deduplicate(unique, domain.DedupFileOrder)
	if !slices.EqualFunc(unique, again, func(a, b domain.Post) bool { return a.Line == b.Line }) {
		p.errorf("dedup is not idempotent: %d then %d posts", len(unique), len(again))
	}
	return p
}

// ── Phase 3: keyword incidence ──

// validateKeywords recounts hits with a plain token scan and checks the
// bundle's date index matches the dates of the surviving posts.
func validateKeywords(in *inputs) *phase {
	p := &phase{name: "Phase 3: Keyword incidence"}

	posts, err := pipeline.ParsePosts(in.posts)
	if err != nil {
		p.errorf("parse posts: %v", err)
		return p
	}
	unique := domain.Deduplicate(posts, domain.DedupFileOrder)

	want := map[domain.Date]int{}
	for _, post := range unique {
		tokens := strings.Fields(domain.NormalizeText(post.Text))
		want[domain.DateOf(post.Timestamp)] += naiveCount(tokens, in.vocab.Terms())
	}

	got := in.bundle.DailyKeywordCount
	if len(got) != len(want) {
		p.errorf("bundle has %d days, posts cover %d", len(got), len(want))
	}
	for i, c := range got {
		if i > 0 && !got[i-1].Date.Before(c.Date) {
			p.errorf("keyword dates not strictly ascending at %s", c.Date)
		}
		if c.Count < 0 {
			p.errorf("%s: negative count %d", c.Date, c.Count)
		}
		w, ok := want[c.Date]
		if !ok {
			p.errorf("%s: date has no posts", c.Date)
			continue
		}
		if w != c.Count {
			p.errorf("%s: got %d hits, recount %d", c.Date, c.Count, w)
		}
	}
	return p
}

func naiveCount(tokens, terms []string) int {
	n := 0
	for _, term := range terms {
		words := strings.Fields(term)
		for i := 0; i+len(words) <= len(tokens); i++ {
			if slices.Equal(tokens[i:i+len(words)], words) {
				n++
			}
		}
	}
	return n
}

// ── Phase 4: probability ──

func validateProbability(in *inputs) *phase {
	p := &phase{name: "Phase 4: Probability series"}
	series := in.bundle.ProbabilitySeries
	tbl := in.probability

	if len(series) != len(tbl.Rows) {
		p.errorf("series has %d rows, file has %d", len(series), len(tbl.Rows))
		return p
	}

	var latest domain.ProbabilityPoint
	for i, pt := range series {
		rawDate := tbl.Rows[i].Field(0)
		if d, err := domain.ParseDate(rawDate); err != nil || d != pt.Date {
			p.errorf("row %d: series date %s does not match file date %q", tbl.Rows[i].Line, pt.Date, rawDate)
		}
		if pt.Value < 0 || pt.Value > 1 {
			p.errorf("%s: value %g outside [0,1]", pt.Date, pt.Value)
		}
		if i == 0 || !pt.Date.Before(latest.Date) {
			latest = pt
		}
	}

	cur := in.bundle.CurrentProbability
	if len(series) == 0 {
		if cur != nil {
			p.errorf("current probability set for an empty series")
		}
		return p
	}
	if cur == nil {
		p.errorf("current probability missing")
		return p
	}
	if cur.Date != latest.Date || cur.Value != latest.Value {
		p.errorf("current is %s=%g, latest row is %s=%g", cur.Date, cur.Value, latest.Date, latest.Value)
	}
	if !percentRe.MatchString(cur.Percent) {
		p.errorf("percent %q is not a two-decimal percentage", cur.Percent)
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(cur.Percent, "%"), 64)
	if err != nil || math.Abs(pct-cur.Value*100) > 0.005+tolerance {
		p.errorf("percent %q does not round %g to two decimals", cur.Percent, cur.Value)
	}
	return p
}
