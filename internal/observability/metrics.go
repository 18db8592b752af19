package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RowsRead          *prometheus.CounterVec // labels: source={rainfall,posts,probability}
	LoadErrors        *prometheus.CounterVec // labels: source, kind={parse,type,range,schema,canceled,io}
	DuplicatesDropped prometheus.Counter
	KeywordHits       prometheus.Counter

	// Run metrics.
	Runs          *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration   *prometheus.HistogramVec // labels: outcome
	SeriesPoints  *prometheus.GaugeVec // labels: series
	PipelineReady prometheus.Gauge

	// Normalizer cache metrics.
	NormalizerCache *prometheus.CounterVec // labels: result={hit,miss}

	MessagesPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

// Register adds the metrics to reg. Used by tests that scrape a private registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.LoadErrors,
		m.DuplicatesDropped,
		m.KeywordHits,
		m.Runs,
		m.RunDuration,
		m.SeriesPoints,
		m.PipelineReady,
		m.NormalizerCache,
		m.MessagesPublished,
	}
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      help("Data rows read per source file."),
		}, []string{"source"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      help("Source load failures by source and error kind."),
		}, []string{"source", "kind"}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_posts_dropped_total",
			Help:      help("Posts discarded because their id was already seen."),
		}),
		KeywordHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_hits_total",
			Help:      help("Keyword occurrences counted across all posts."),
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      help("Pipeline runs by outcome."),
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      help("Duration of a pipeline run by outcome."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		SeriesPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_points",
			Help:      help("Points in each series of the latest bundle."),
		}, []string{"series"}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      help("1 once a bundle has been built, 0 otherwise."),
		}),
		NormalizerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizer_cache_total",
			Help:      help("Normalizer cache lookups by result."),
		}, []string{"result"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      help("Daily signal messages written to the sink topic."),
		}),
	}
}
