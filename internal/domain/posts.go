package domain

import (
	"fmt"
	"slices"
	"time"
)

// Post is one social-media record after typed parsing.
type Post struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Line      int       `json:"-"`
}

// DailyKeywordCount is the keyword incidence of one calendar day.
type DailyKeywordCount struct {
	Date  Date `json:"date"`
	Count int  `json:"count"`
}

// DedupPolicy decides which of several posts sharing an id survives.
type DedupPolicy string

const (
	// DedupFileOrder keeps the occurrence that appears last in the file.
	DedupFileOrder DedupPolicy = "file_order"
	// DedupLatestTimestamp keeps the occurrence with the latest timestamp,
	// falling back to file order on ties.
	DedupLatestTimestamp DedupPolicy = "latest_timestamp"
)

// ParseDedupPolicy validates a policy name. Empty means DedupFileOrder.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch DedupPolicy(s) {
	case "", DedupFileOrder:
		return DedupFileOrder, nil
	case DedupLatestTimestamp:
		return DedupLatestTimestamp, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q (want %q or %q)", s, DedupFileOrder, DedupLatestTimestamp)
	}
}

// Deduplicate keeps one post per id according to policy. Survivors stay at
// their own position in the input, so applying it twice is a no-op.
func Deduplicate(posts []Post, policy DedupPolicy) []Post {
	winner := make(map[string]int, len(posts))
	for i := range posts {
		cur, ok := winner[posts[i].ID]
		if !ok {
			winner[posts[i].ID] = i
			continue
		}
		switch policy {
		case DedupLatestTimestamp:
			if !posts[i].Timestamp.Before(posts[cur].Timestamp) {
				winner[posts[i].ID] = i
			}
		default:
			winner[posts[i].ID] = i
		}
	}

	out := make([]Post, 0, len(winner))
	for i := range posts {
		if winner[posts[i].ID] == i {
			out = append(out, posts[i])
		}
	}
	return out
}

// CountDailyKeywords normalizes and tags each post, then sums hits per
// calendar day. Every date carrying at least one post appears, ascending,
// even when its count is zero.
func CountDailyKeywords(posts []Post, n TextNormalizer, vocab *Vocabulary) []DailyKeywordCount {
	if n == nil {
		n = Normalizer{}
	}

	totals := make(map[Date]int)
	for i := range posts {
		day := DateOf(posts[i].Timestamp)
		totals[day] += CountKeywords(n.Normalize(posts[i].Text), vocab)
	}

	out := make([]DailyKeywordCount, 0, len(totals))
	for d, c := range totals {
		out = append(out, DailyKeywordCount{Date: d, Count: c})
	}
	slices.SortFunc(out, func(a, b DailyKeywordCount) int { return a.Date.Compare(b.Date) })
	return out
}
