package pipeline

import (
	"errors"
	"strings"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Accepted header names for each post column, matched case-insensitively.
var (
	postIDColumns   = []string{"id"}
	postTimeColumns = []string{"data", "timestamp", "created_at"}
	postTextColumns = []string{"texto", "text"}
)

// ParsePosts types a posts table. It needs an id, a timestamp and a text
// column; other columns are ignored.
func ParsePosts(tbl *domain.Table) ([]domain.Post, error) {
	idIdx, err := requireColumn(tbl, postIDColumns)
	if err != nil {
		return nil, err
	}
	tsIdx, err := requireColumn(tbl, postTimeColumns)
	if err != nil {
		return nil, err
	}
	textIdx, err := requireColumn(tbl, postTextColumns)
	if err != nil {
		return nil, err
	}

	tsColumn := strings.TrimSpace(tbl.Header[tsIdx])
	posts := make([]domain.Post, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if err := checkWidth(tbl, row); err != nil {
			return nil, err
		}
		id := row.Field(idIdx)
		if id == "" {
			return nil, domain.NewParseError(tbl.Name, row.Line, tbl.Header[idIdx], "", errors.New("empty id"))
		}
		ts, err := parseInstant(tbl.Name, row, tsIdx, tsColumn, postLayouts)
		if err != nil {
			return nil, err
		}
		var text string
		if textIdx < len(row.Fields) {
			text = row.Fields[textIdx]
		}
		posts = append(posts, domain.Post{ID: id, Timestamp: ts, Text: text, Line: row.Line})
	}
	return posts, nil
}

func requireColumn(tbl *domain.Table, names []string) (int, error) {
	for _, name := range names {
		if idx, ok := tbl.ColumnIndex(name); ok {
			return idx, nil
		}
	}
	return -1, domain.NewSchemaError(tbl.Name, names[0], "required column missing")
}

// TweetSummary is the outcome of aggregating one posts file.
type TweetSummary struct {
	Daily      []domain.DailyKeywordCount
	Posts      int // rows read
	Unique     int // rows left after deduplication
	Duplicates int
	Hits       int
}

// TweetAggregator deduplicates posts and counts keyword hits per day.
// It holds no mutable state and may be shared between runs.
type TweetAggregator struct {
	normalizer domain.TextNormalizer
	vocab      *domain.Vocabulary
	policy     domain.DedupPolicy
}

// NewTweetAggregator builds an aggregator. A nil normalizer uses
// domain.Normalizer.
func NewTweetAggregator(n domain.TextNormalizer, vocab *domain.Vocabulary, policy domain.DedupPolicy) *TweetAggregator {
	if n == nil {
		n = domain.Normalizer{}
	}
	return &TweetAggregator{normalizer: n, vocab: vocab, policy: policy}
}

// Aggregate runs dedup, normalization, tagging and grouping over posts.
func (a *TweetAggregator) Aggregate(posts []domain.Post) TweetSummary {
	unique := domain.Deduplicate(posts, a.policy)
	daily := domain.CountDailyKeywords(unique, a.normalizer, a.vocab)

	hits := 0
	for _, d := range daily {
		hits += d.Count
	}
	return TweetSummary{
		Daily:      daily,
		Posts:      len(posts),
		Unique:     len(unique),
		Duplicates: len(posts) - len(unique),
		Hits:       hits,
	}
}

// Load parses tbl and aggregates the posts.
func (a *TweetAggregator) Load(tbl *domain.Table) (TweetSummary, error) {
	posts, err := ParsePosts(tbl)
	if err != nil {
		return TweetSummary{}, err
	}
	return a.Aggregate(posts), nil
}
