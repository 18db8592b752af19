package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/flood-signal-etl/internal/cache"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
)

// Source names used in logs and metric labels.
const (
	SourceRainfall    = "rainfall"
	SourcePosts       = "posts"
	SourceProbability = "probability"
)

// TableReader loads a tabular source from a path.
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*domain.Table, error)
}

// Publisher receives every successfully built bundle.
type Publisher interface {
	Publish(ctx context.Context, bundle domain.SeriesBundle) error
}

// Sources are the three input paths of a run.
type Sources struct {
	Rainfall    string
	Posts       string
	Probability string
}

// Options configure a Pipeline.
type Options struct {
	Sources         Sources
	AggregateColumn string
	Keywords        []string
	DedupPolicy     domain.DedupPolicy
	// Normalizer cleans post text. Nil means domain.Normalizer.
	Normalizer domain.TextNormalizer
	// Publisher is optional.
	Publisher Publisher
}

// Pipeline loads the three sources and aligns them into a SeriesBundle.
type Pipeline struct {
	reader      TableReader
	sources     Sources
	rainfall    *RainfallLoader
	tweets      *TweetAggregator
	probability ProbabilityLoader
	normalizer  domain.TextNormalizer
	vocab       *domain.Vocabulary
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	bundle atomic.Pointer[domain.SeriesBundle]
	ready  atomic.Bool
}

// New creates a Pipeline. The keyword vocabulary is fixed here for the
// lifetime of the Pipeline.
func New(reader TableReader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	n := opts.Normalizer
	if n == nil {
		n = domain.Normalizer{}
	}
	vocab := domain.NewVocabulary(opts.Keywords, n)
	return &Pipeline{
		reader:     reader,
		sources:    opts.Sources,
		rainfall:   NewRainfallLoader(opts.AggregateColumn),
		tweets:     NewTweetAggregator(n, vocab, opts.DedupPolicy),
		normalizer: n,
		vocab:      vocab,
		publisher:  opts.Publisher,
		logger:     logger,
		metrics:    metrics,
	}
}

// Vocabulary returns the normalized keyword set in use.
func (p *Pipeline) Vocabulary() *domain.Vocabulary { return p.vocab }

// CheckReadiness returns nil once a run has produced a bundle.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Bundle returns the bundle of the latest successful run.
func (p *Pipeline) Bundle() (domain.SeriesBundle, bool) {
	b := p.bundle.Load()
	if b == nil {
		return domain.SeriesBundle{}, false
	}
	return *b, true
}

// Run performs one load, transform and expose pass. The three sources load
// concurrently; the first failure cancels the others and fails the run.
func (p *Pipeline) Run(ctx context.Context) (domain.SeriesBundle, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("pipeline run started",
		"rainfall", p.sources.Rainfall,
		"posts", p.sources.Posts,
		"probability", p.sources.Probability,
		"keywords", p.vocab.Len(),
	)
	before := p.cacheStats()

	var (
		rain   domain.Rainfall
		tweets TweetSummary
		prob   domain.ProbabilitySeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tbl, err := p.read(gctx, SourceRainfall, p.sources.Rainfall)
		if err != nil {
			return err
		}
		if rain, err = p.rainfall.Load(tbl); err != nil {
			return p.loadFailed(SourceRainfall, err)
		}
		logger.Info("rainfall loaded", "file", tbl.Name, "rows", len(tbl.Rows),
			"days", len(rain.Aggregate), "stations", len(rain.PerStation.Stations))
		return nil
	})
	g.Go(func() error {
		tbl, err := p.read(gctx, SourcePosts, p.sources.Posts)
		if err != nil {
			return err
		}
		if tweets, err = p.tweets.Load(tbl); err != nil {
			return p.loadFailed(SourcePosts, err)
		}
		logger.Info("posts aggregated", "file", tbl.Name, "posts", tweets.Posts,
			"duplicates", tweets.Duplicates, "days", len(tweets.Daily), "hits", tweets.Hits)
		return nil
	})
	g.Go(func() error {
		tbl, err := p.read(gctx, SourceProbability, p.sources.Probability)
		if err != nil {
			return err
		}
		if prob, err = p.probability.Load(tbl); err != nil {
			return p.loadFailed(SourceProbability, err)
		}
		logger.Info("probability loaded", "file", tbl.Name, "rows", len(prob))
		return nil
	})

	if err := g.Wait(); err != nil {
		p.recordRun("error", start)
		logger.Error("pipeline run failed", "error", err)
		return domain.SeriesBundle{}, err
	}

	p.metrics.DuplicatesDropped.Add(float64(tweets.Duplicates))
	p.metrics.KeywordHits.Add(float64(tweets.Hits))
	p.recordCache(before)

	bundle := domain.AlignSeries(runID, rain, tweets.Daily, prob)
	p.bundle.Store(&bundle)
	p.ready.Store(true)
	p.metrics.PipelineReady.Set(1)
	p.recordSeries(&bundle)

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, bundle); err != nil {
			p.recordRun("error", start)
			logger.Error("publish failed", "error", err)
			return bundle, fmt.Errorf("publish bundle: %w", err)
		}
	}

	p.recordRun("success", start)
	logger.Info("pipeline run complete", "duration", time.Since(start))
	return bundle, nil
}

func (p *Pipeline) recordRun(outcome string, start time.Time) {
	p.metrics.Runs.WithLabelValues(outcome).Inc()
	p.metrics.RunDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (p *Pipeline) read(ctx context.Context, source, path string) (*domain.Table, error) {
	tbl, err := p.reader.ReadTable(ctx, path)
	if err != nil {
		return nil, p.loadFailed(source, err)
	}
	p.metrics.RowsRead.WithLabelValues(source).Add(float64(len(tbl.Rows)))
	return tbl, nil
}

func (p *Pipeline) loadFailed(source string, err error) error {
	p.metrics.LoadErrors.WithLabelValues(source, errorKind(err)).Inc()
	return fmt.Errorf("load %s: %w", source, err)
}

func (p *Pipeline) cacheStats() cache.Stats {
	if c, ok := p.normalizer.(*cache.CachedNormalizer); ok {
		return c.Stats()
	}
	return cache.Stats{}
}

func (p *Pipeline) recordCache(before cache.Stats) {
	after := p.cacheStats()
	p.metrics.NormalizerCache.WithLabelValues("hit").Add(float64(after.Hits - before.Hits))
	p.metrics.NormalizerCache.WithLabelValues("miss").Add(float64(after.Misses - before.Misses))
}

func (p *Pipeline) recordSeries(b *domain.SeriesBundle) {
	p.metrics.SeriesPoints.WithLabelValues("rainfall_aggregate").Set(float64(len(b.RainfallAggregate)))
	p.metrics.SeriesPoints.WithLabelValues("rainfall_per_station").Set(float64(len(b.RainfallPerStation.Rows)))
	p.metrics.SeriesPoints.WithLabelValues("daily_keyword_count").Set(float64(len(b.DailyKeywordCount)))
	p.metrics.SeriesPoints.WithLabelValues("probability_series").Set(float64(len(b.ProbabilitySeries)))
}

// errorKind maps an error to its metric label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrType):
		return "type"
	case errors.Is(err, domain.ErrRange):
		return "range"
	case errors.Is(err, domain.ErrSchema):
		return "schema"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}
