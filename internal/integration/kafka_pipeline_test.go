//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/flood-signal-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flood-signal-etl/internal/adapter/tabular"
	"github.com/couchcryptid/flood-signal-etl/internal/config"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	"github.com/couchcryptid/flood-signal-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSinkTopic = "test-flood-signals"

// publishedMessage holds a deserialized message read from the sink topic.
type publishedMessage struct {
	Signal  kafka.DailySignal
	Key     string
	Headers map[string]string
}

// readPublished reads a single message from the sink consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var sig kafka.DailySignal
	require.NoError(t, json.Unmarshal(msg.Value, &sig), "unmarshal sink message")

	return publishedMessage{Signal: sig, Key: string(msg.Key), Headers: headers}
}

// TestPipelinePublishesDailySignals runs the pipeline over the mock fixtures
// with the Kafka writer as publisher and reads every point back.
func TestPipelinePublishesDailySignals(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaEnabled:   true,
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = writer.Close() })

	dir := filepath.Join("..", "..", "data", "mock")
	p := pipeline.New(tabular.NewReader(',', ""), pipeline.Options{
		Sources: pipeline.Sources{
			Rainfall:    filepath.Join(dir, "pluvio_out.csv"),
			Posts:       filepath.Join(dir, "tweets_out.csv"),
			Probability: filepath.Join(dir, "probabilidade.csv"),
		},
		Keywords:    domain.DefaultKeywords,
		DedupPolicy: domain.DedupFileOrder,
		Publisher:   writer,
	}, discardLogger(), metrics)

	bundle, err := p.Run(ctx)
	require.NoError(t, err)

	expected := kafka.Flatten(bundle)
	// 3 aggregate days + 3 days x 4 stations + 3 keyword days + 4 probability rows.
	require.Len(t, expected, 22)

	consumer := newConsumer(broker, testSinkTopic)
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]publishedMessage, len(expected))
	for range expected {
		msg := readPublished(ctx, t, consumer)
		got[msg.Key] = msg
	}

	for _, want := range expected {
		msg, ok := got[want.Key()]
		require.True(t, ok, "missing message %s", want.Key())
		assert.Equal(t, want, msg.Signal)
		assert.Equal(t, want.Series, msg.Headers["series"])
		assert.Equal(t, bundle.RunID, msg.Headers["run_id"])
		assert.Equal(t, bundle.GeneratedAt.UTC().Format(time.RFC3339), msg.Headers["generated_at"])
	}

	agg := got["rainfall_aggregate|2024-02-01"]
	assert.InDelta(t, 5.5, agg.Signal.Value, 1e-9)
	kw := got["daily_keyword_count|2024-02-02"]
	assert.InDelta(t, 0, kw.Signal.Value, 0)
}

// TestPipelineInvalidInputPublishesNothing checks that a failed load never
// reaches the sink.
func TestPipelineInvalidInputPublishesNothing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: testSinkTopic}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = writer.Close() })

	dir := filepath.Join("..", "..", "data", "mock")
	p := pipeline.New(tabular.NewReader(',', ""), pipeline.Options{
		Sources: pipeline.Sources{
			Rainfall:    filepath.Join(dir, "pluvio_out.csv"),
			Posts:       filepath.Join(dir, "tweets_out.csv"),
			Probability: filepath.Join(dir, "missing.csv"),
		},
		Keywords:  domain.DefaultKeywords,
		Publisher: writer,
	}, discardLogger(), metrics)

	_, err := p.Run(ctx)
	require.Error(t, err)

	consumer := newConsumer(broker, testSinkTopic)
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 3*time.Second)
	defer readCancel()
	_, err = consumer.ReadMessage(readCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
