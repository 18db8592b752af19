// Package kafka publishes aligned daily signals to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-signal-etl/internal/config"
	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
)

// Messages per WriteMessages call.
const publishChunk = 500

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces daily signal messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes every daily point of the bundle and writes them to the
// sink topic. Keys are stable across runs so a compacted topic keeps only
// the latest value per point.
func (w *Writer) Publish(ctx context.Context, bundle domain.SeriesBundle) error {
	signals := Flatten(bundle)
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(signals))
	for i := range signals {
		msg, err := serializeToMessage(signals[i], bundle.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	for start := 0; start < len(msgs); start += publishChunk {
		end := min(start+publishChunk, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("write messages %d-%d of %d: %w", start, end, len(msgs), err)
		}
		w.metrics.MessagesPublished.Add(float64(end - start))
	}
	w.logger.Info("daily signals published", "run_id", bundle.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DailySignal into a Kafka message.
func serializeToMessage(s DailySignal, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily signal: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "series", Value: []byte(s.Series)},
			{Key: "run_id", Value: []byte(s.RunID)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
