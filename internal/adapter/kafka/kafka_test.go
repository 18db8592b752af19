package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	batches [][]kafkago.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, msgs)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func day(d int) domain.Date { return domain.Date{Year: 2024, Month: time.February, Day: d} }

func testBundle() domain.SeriesBundle {
	return domain.SeriesBundle{
		RunID:             "run-1",
		GeneratedAt:       time.Date(2024, time.February, 5, 6, 0, 0, 0, time.UTC),
		RainfallAggregate: domain.DailySeries{{Date: day(1), Value: 5.5}},
		RainfallPerStation: domain.StationSeries{
			Stations: []string{"Garcia", "Centro"},
			Rows:     []domain.StationRow{{Date: day(1), Values: map[string]float64{"Centro": 3, "Garcia": 2.5}}},
		},
		DailyKeywordCount: []domain.DailyKeywordCount{{Date: day(1), Count: 4}},
		ProbabilitySeries: domain.ProbabilitySeries{{Date: day(2), Value: 0.2}, {Date: day(1), Value: 0.1}},
	}
}

func TestFlatten(t *testing.T) {
	signals := Flatten(testBundle())

	keys := make([]string, len(signals))
	for i, s := range signals {
		keys[i] = s.Key()
		assert.Equal(t, "run-1", s.RunID)
	}
	assert.Equal(t, []string{
		"rainfall_aggregate|2024-02-01",
		"rainfall_per_station|2024-02-01|Garcia",
		"rainfall_per_station|2024-02-01|Centro",
		"daily_keyword_count|2024-02-01",
		"probability_series|2024-02-02",
		"probability_series|2024-02-01",
	}, keys)
	assert.InDelta(t, 2.5, signals[1].Value, 0)
	assert.InDelta(t, 4, signals[3].Value, 0)
}

func TestFlatten_EmptyBundle(t *testing.T) {
	assert.Empty(t, Flatten(domain.SeriesBundle{}))
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 2, 5, 6, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	sig := DailySignal{Series: SeriesRainfallPerStation, Date: day(1), Station: "Centro", Value: 3, RunID: "run-1"}

	msg, err := serializeToMessage(sig, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("rainfall_per_station|2024-02-01|Centro"), msg.Key)
	assert.JSONEq(t, `{"series":"rainfall_per_station","date":"2024-02-01","station":"Centro","value":3,"run_id":"run-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "series", msg.Headers[0].Key)
	assert.Equal(t, []byte(SeriesRainfallPerStation), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-02-05T09:00:00Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_OmitsEmptyStation(t *testing.T) {
	msg, err := serializeToMessage(DailySignal{Series: SeriesProbability, Date: day(2), Value: 0.2, RunID: "r"}, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), "station")
}

func TestWriter_Publish(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.Default(), metrics: observability.NewMetricsForTesting()}

	require.NoError(t, w.Publish(context.Background(), testBundle()))
	require.Len(t, fw.batches, 1)
	assert.Len(t, fw.batches[0], 6)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_PublishChunks(t *testing.T) {
	b := domain.SeriesBundle{RunID: "run-2"}
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range publishChunk + 10 {
		b.RainfallAggregate = append(b.RainfallAggregate, domain.DailyValue{Date: domain.DateOf(start.AddDate(0, 0, i)), Value: 1})
	}

	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.Default(), metrics: observability.NewMetricsForTesting()}
	require.NoError(t, w.Publish(context.Background(), b))

	require.Len(t, fw.batches, 2)
	assert.Len(t, fw.batches[0], publishChunk)
	assert.Len(t, fw.batches[1], 10)
}

func TestWriter_PublishEmptyBundleWritesNothing(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.Default(), metrics: observability.NewMetricsForTesting()}
	require.NoError(t, w.Publish(context.Background(), domain.SeriesBundle{}))
	assert.Empty(t, fw.batches)
}

func TestWriter_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, logger: slog.Default(), metrics: observability.NewMetricsForTesting()}

	err := w.Publish(context.Background(), testBundle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
