package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-signal-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flood-signal-etl/internal/adapter/tabular"
	"github.com/couchcryptid/flood-signal-etl/internal/cache"
	"github.com/couchcryptid/flood-signal-etl/internal/config"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	"github.com/couchcryptid/flood-signal-etl/internal/pipeline"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	rainfallPath    string
	postsPath       string
	probabilityPath string
	aggregateColumn string
)

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Build daily rainfall, keyword and flood probability series",
	Long: `etl turns raw rainfall readings, social-media posts and a precomputed
flood probability table into three daily series.

Configuration comes from the environment (and a .env file when present);
flags override the input paths.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rainfallPath, "rainfall", "", "rainfall file (overrides RAINFALL_PATH)")
	flags.StringVar(&postsPath, "posts", "", "posts file (overrides POSTS_PATH)")
	flags.StringVar(&probabilityPath, "probability", "", "probability file (overrides PROBABILITY_PATH)")
	flags.StringVar(&aggregateColumn, "aggregate-column", "", "rainfall aggregate column (overrides RAINFALL_AGGREGATE_COLUMN)")

	rootCmd.AddCommand(runCmd, serveCmd)
}

func initConfig(cmd *cobra.Command) error {
	var err error
	if cfg, err = config.Load(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("rainfall") {
		cfg.RainfallPath = rainfallPath
	}
	if flags.Changed("posts") {
		cfg.PostsPath = postsPath
	}
	if flags.Changed("probability") {
		cfg.ProbabilityPath = probabilityPath
	}
	if flags.Changed("aggregate-column") {
		cfg.AggregateColumn = aggregateColumn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// run prints its summary on stdout, so its logs go to stderr.
	var logOut io.Writer
	if cmd.Name() != serveCmdName {
		logOut = cmd.ErrOrStderr()
	}
	logger = observability.NewLogger(cfg, logOut)
	return nil
}

// newPipeline wires the pipeline from cfg. The returned close function
// releases the Kafka writer when one was created.
func newPipeline(metrics *observability.Metrics) (*pipeline.Pipeline, func()) {
	opts := pipeline.Options{
		Sources: pipeline.Sources{
			Rainfall:    cfg.RainfallPath,
			Posts:       cfg.PostsPath,
			Probability: cfg.ProbabilityPath,
		},
		AggregateColumn: cfg.AggregateColumn,
		Keywords:        cfg.Keywords,
		DedupPolicy:     cfg.DedupPolicy,
		Normalizer:      cache.NewCachedNormalizer(domain.Normalizer{}, cfg.NormalizerCacheSize),
	}

	closeFn := func() {}
	if cfg.KafkaEnabled {
		writer := kafka.NewWriter(cfg, logger, metrics)
		opts.Publisher = writer
		closeFn = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	reader := tabular.NewReader(cfg.Delimiter, cfg.Sheet)
	return pipeline.New(reader, opts, logger, metrics), closeFn
}
