// Command genmock generates deterministic mock rainfall, posts and
// probability files in the layout the pipeline reads. After writing, it
// loads them back through the real pipeline loaders and logs the resulting
// series sizes.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out-dir data/generated \
//	  -start 2024-01-01 -days 60 -seed 7 -xlsx
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/flood-signal-etl/internal/adapter/tabular"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	"github.com/couchcryptid/flood-signal-etl/internal/pipeline"
)

const (
	rainfallFile    = "pluvio_out.csv"
	postsFile       = "tweets_out.csv"
	probabilityFile = "probabilidade.csv"
	aggregateColumn = "cidade"
)

var defaultStations = []string{"Centro", "Garcia", "Itoupava Central", "Velha", "Progresso"}

// Post templates. %s is replaced by a neighbourhood name.
var (
	floodTemplates = []string{
		"Muita chuva agora no %s, ruas alagadas!",
		"Alagamento na rua principal do %s https://t.co/x1",
		"@defesacivil o rio transbordou perto do %s #enchente",
		"RT @noticias: Defesa Civil alerta para risco de deslizamento no %s",
		"Enchente de novo no %s... chuva não para",
		"Inundação no %s, carros ilhados &amp; comércio fechado",
	}
	calmTemplates = []string{
		"Bom dia %s! Sol forte hoje",
		"Trânsito tranquilo no %s",
		"Alguém sabe de um bom restaurante no %s?",
	}
)

type generator struct {
	rng      *rand.Rand
	start    time.Time
	days     int
	stations []string
	perDay   int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write the generated files into")
	startFlag := flag.String("start", "2024-01-01", "first day (YYYY-MM-DD)")
	days := flag.Int("days", 30, "number of days to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	perDay := flag.Int("posts-per-day", 12, "average posts per day")
	stationsFlag := flag.String("stations", strings.Join(defaultStations, ","), "comma-separated station names")
	withXLSX := flag.Bool("xlsx", false, "also write the rainfall table as pluvio_out.xlsx")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *days <= 0 || *perDay < 0 {
		return fmt.Errorf("-days must be positive and -posts-per-day non-negative")
	}
	start, err := time.Parse(domain.DateLayout, *startFlag)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	stations := splitStations(*stationsFlag)
	if len(stations) == 0 {
		return fmt.Errorf("-stations must name at least one station")
	}

	g := &generator{
		rng:      rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)),
		start:    start,
		days:     *days,
		stations: stations,
		perDay:   *perDay,
	}

	rainfall, daily := g.rainfall()
	if err := writeCSV(filepath.Join(*outDir, rainfallFile), rainfall); err != nil {
		return err
	}
	if *withXLSX {
		if err := writeXLSX(filepath.Join(*outDir, "pluvio_out.xlsx"), rainfall); err != nil {
			return err
		}
	}
	if err := writeCSV(filepath.Join(*outDir, postsFile), g.posts(daily)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(*outDir, probabilityFile), g.probability(daily)); err != nil {
		return err
	}

	return summarize(*outDir)
}

func splitStations(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// rainfall emits four readings a day per station. Wet spells follow a
// two-state chain so rainy days cluster. It also returns the daily citywide
// totals, which drive the posts and probability generators.
func (g *generator) rainfall() ([][]string, []float64) {
	header := append([]string{"datahora"}, g.stations...)
	header = append(header, aggregateColumn)
	rows := [][]string{header}
	daily := make([]float64, g.days)

	wet := false
	for d := range g.days {
		if wet {
			wet = g.rng.Float64() < 0.6
		} else {
			wet = g.rng.Float64() < 0.25
		}
		// Skip roughly one dry day in ten entirely to leave calendar gaps.
		if !wet && g.rng.Float64() < 0.1 {
			continue
		}
		for h := 0; h < 24; h += 6 {
			ts := g.start.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
			row := []string{ts.Format("02/01/2006-15:04:05")}
			var sum float64
			for range g.stations {
				v := 0.0
				if wet {
					v = round1(g.rng.ExpFloat64() * 6)
				}
				sum += v
				row = append(row, strconv.FormatFloat(v, 'f', 1, 64))
			}
			agg := round1(sum / float64(len(g.stations)))
			daily[d] += agg
			rows = append(rows, append(row, strconv.FormatFloat(agg, 'f', 1, 64)))
		}
	}
	return rows, daily
}

// posts writes more flood chatter on wet days and repeats about one id in
// twenty with an edited text, as the upstream scraper does.
func (g *generator) posts(daily []float64) [][]string {
	rows := [][]string{{"id", "data", "texto", "usuario"}}
	id := 1000
	for d := range g.days {
		n := g.perDay/2 + g.rng.IntN(g.perDay+1)
		floodShare := math.Min(0.9, daily[d]/40)
		for range n {
			id++
			ts := g.start.AddDate(0, 0, d).Add(time.Duration(g.rng.IntN(86400)) * time.Second)
			place := g.stations[g.rng.IntN(len(g.stations))]
			text := g.pick(calmTemplates, place)
			if g.rng.Float64() < floodShare {
				text = g.pick(floodTemplates, place)
			}
			user := "user" + strconv.Itoa(g.rng.IntN(200))
			rows = append(rows, []string{strconv.Itoa(id), ts.Format("2006-01-02 15:04:05"), text, user})

			if g.rng.Float64() < 0.05 {
				edited := ts.Add(time.Duration(g.rng.IntN(3600)) * time.Second)
				rows = append(rows, []string{strconv.Itoa(id), edited.Format("2006-01-02 15:04:05"), text + " (editado)", user})
			}
		}
	}
	return rows
}

func (g *generator) pick(templates []string, place string) string {
	return fmt.Sprintf(templates[g.rng.IntN(len(templates))], place)
}

// probability is a logistic response to the trailing three-day rainfall.
func (g *generator) probability(daily []float64) [][]string {
	rows := [][]string{{"data", "probabilidade"}}
	for d := range g.days {
		var trailing float64
		for k := max(0, d-2); k <= d; k++ {
			trailing += daily[k]
		}
		p := 1 / (1 + math.Exp(-(trailing-30)/8))
		p = math.Round(p*10000) / 10000
		rows = append(rows, []string{g.start.AddDate(0, 0, d).Format(domain.DateLayout), strconv.FormatFloat(p, 'f', 4, 64)})
	}
	return rows
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("%s: %d rows", filepath.Base(path), len(rows)-1)
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("%s: %d rows", filepath.Base(path), len(rows)-1)
	return nil
}

// summarize loads the generated files through the pipeline.
func summarize(dir string) error {
	// Fixed clock so the bundle timestamp is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	p := pipeline.New(tabular.NewReader(',', ""), pipeline.Options{
		Sources: pipeline.Sources{
			Rainfall:    filepath.Join(dir, rainfallFile),
			Posts:       filepath.Join(dir, postsFile),
			Probability: filepath.Join(dir, probabilityFile),
		},
		Keywords:    domain.DefaultKeywords,
		DedupPolicy: domain.DedupFileOrder,
	}, logger, observability.NewMetricsForTesting())

	b, err := p.Run(context.Background())
	if err != nil {
		return fmt.Errorf("generated files do not load: %w", err)
	}
	hits := 0
	for _, c := range b.DailyKeywordCount {
		hits += c.Count
	}
	log.Printf("rainfall: %d days, %.1f mm total", len(b.RainfallAggregate), b.RainfallAggregate.Total())
	log.Printf("keywords: %d days, %d hits", len(b.DailyKeywordCount), hits)
	if b.CurrentProbability != nil {
		log.Printf("probability: %d rows, current %s on %s", len(b.ProbabilitySeries), b.CurrentProbability.Percent, b.CurrentProbability.Date)
	}
	return nil
}
