package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	RainfallPath    string
	PostsPath       string
	ProbabilityPath string
	Delimiter       rune
	Sheet           string

	// AggregateColumn names the citywide rainfall column. Empty selects the
	// last column.
	AggregateColumn string
	Keywords        []string
	DedupPolicy     domain.DedupPolicy

	NormalizerCacheSize int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseDedupPolicy(sharedcfg.EnvOrDefault("DEDUP_POLICY", string(domain.DedupFileOrder)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEDUP_POLICY: %w", err)
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RainfallPath:        sharedcfg.EnvOrDefault("RAINFALL_PATH", "data/mock/pluvio_out.csv"),
		PostsPath:           sharedcfg.EnvOrDefault("POSTS_PATH", "data/mock/tweets_out.csv"),
		ProbabilityPath:     sharedcfg.EnvOrDefault("PROBABILITY_PATH", "data/mock/probabilidade.csv"),
		Delimiter:           delimiter,
		Sheet:               os.Getenv("XLSX_SHEET"),
		AggregateColumn:     strings.TrimSpace(os.Getenv("RAINFALL_AGGREGATE_COLUMN")),
		Keywords:            parseKeywords(os.Getenv("KEYWORDS")),
		DedupPolicy:         policy,
		NormalizerCacheSize: cacheSize,
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		KafkaEnabled:        os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:      sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flood-daily-signals"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags may have overridden after Load.
func (c *Config) Validate() error {
	if c.RainfallPath == "" {
		return errors.New("RAINFALL_PATH is required")
	}
	if c.PostsPath == "" {
		return errors.New("POSTS_PATH is required")
	}
	if c.ProbabilityPath == "" {
		return errors.New("PROBABILITY_PATH is required")
	}
	if len(c.Keywords) == 0 {
		return errors.New("KEYWORDS must contain at least one term")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if c.KafkaEnabled && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.New("invalid CSV_DELIMITER: must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errors.New("invalid CSV_DELIMITER")
	}
	return r, nil
}

// parseKeywords splits a comma-separated override. Unset means the built-in
// vocabulary.
func parseKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return append([]string(nil), domain.DefaultKeywords...)
	}
	var out []string
	for _, term := range strings.Split(s, ",") {
		if term = strings.TrimSpace(term); term != "" {
			out = append(out, term)
		}
	}
	return out
}

func parseCacheSize() (int, error) {
	s := os.Getenv("NORMALIZER_CACHE_SIZE")
	if s == "" {
		return 4096, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid NORMALIZER_CACHE_SIZE")
	}
	return n, nil
}
