package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate_FileOrder(t *testing.T) {
	posts := []Post{
		{ID: "7", Timestamp: at(2023, 11, 22, 10, 0), Text: "chuva leve"},
		{ID: "8", Timestamp: at(2023, 11, 22, 11, 0), Text: "enchente"},
		{ID: "7", Timestamp: at(2023, 11, 22, 9, 0), Text: "chuva forte"},
	}

	got := Deduplicate(posts, DedupFileOrder)

	require.Len(t, got, 2)
	assert.Equal(t, "8", got[0].ID)
	assert.Equal(t, "chuva forte", got[1].Text, "last in file wins even with an earlier timestamp")
}

func TestDeduplicate_LatestTimestamp(t *testing.T) {
	posts := []Post{
		{ID: "7", Timestamp: at(2023, 11, 22, 10, 0), Text: "chuva leve"},
		{ID: "7", Timestamp: at(2023, 11, 22, 9, 0), Text: "chuva forte"},
		{ID: "9", Timestamp: at(2023, 11, 22, 9, 0), Text: "a"},
		{ID: "9", Timestamp: at(2023, 11, 22, 9, 0), Text: "b"},
	}

	got := Deduplicate(posts, DedupLatestTimestamp)

	require.Len(t, got, 2)
	assert.Equal(t, "chuva leve", got[0].Text)
	assert.Equal(t, "b", got[1].Text, "ties fall back to file order")
}

func TestDeduplicate_Idempotent(t *testing.T) {
	posts := []Post{
		{ID: "1", Text: "a"}, {ID: "2", Text: "b"}, {ID: "1", Text: "c"},
		{ID: "3", Text: "d"}, {ID: "2", Text: "e"},
	}
	for _, policy := range []DedupPolicy{DedupFileOrder, DedupLatestTimestamp} {
		once := Deduplicate(posts, policy)
		assert.Equal(t, once, Deduplicate(once, policy), string(policy))
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil, DedupFileOrder))
}

func TestParseDedupPolicy(t *testing.T) {
	p, err := ParseDedupPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DedupFileOrder, p)

	p, err = ParseDedupPolicy("latest_timestamp")
	require.NoError(t, err)
	assert.Equal(t, DedupLatestTimestamp, p)

	_, err = ParseDedupPolicy("random")
	require.Error(t, err)
}

func TestCountDailyKeywords(t *testing.T) {
	vocab := NewVocabulary([]string{"enchente", "chuva"}, nil)
	posts := []Post{
		{ID: "1", Timestamp: at(2023, 11, 23, 8, 0), Text: "Enchente em Blumenau, muita chuva e chuva"},
		{ID: "2", Timestamp: at(2023, 11, 22, 23, 59), Text: "Chuva!"},
		{ID: "3", Timestamp: at(2023, 11, 23, 0, 1), Text: "achuvarada"},
		{ID: "4", Timestamp: at(2023, 11, 24, 12, 0), Text: "dia de sol"},
	}

	got := CountDailyKeywords(posts, Normalizer{}, vocab)

	assert.Equal(t, []DailyKeywordCount{
		{Date: Date{2023, time.November, 22}, Count: 1},
		{Date: Date{2023, time.November, 23}, Count: 3},
		{Date: Date{2023, time.November, 24}, Count: 0},
	}, got)
}

func TestCountDailyKeywords_DedupScenario(t *testing.T) {
	vocab := NewVocabulary([]string{"enchente", "chuva"}, nil)
	posts := Deduplicate([]Post{
		{ID: "7", Timestamp: at(2023, 11, 22, 8, 0), Text: "chuva leve"},
		{ID: "7", Timestamp: at(2023, 11, 22, 9, 0), Text: "chuva forte"},
	}, DedupFileOrder)

	got := CountDailyKeywords(posts, nil, vocab)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
}

func TestCountDailyKeywords_Empty(t *testing.T) {
	got := CountDailyKeywords(nil, nil, NewVocabulary(DefaultKeywords, nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
