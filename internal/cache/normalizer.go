// Package cache memoizes text normalization for repeated post bodies.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// Stats is a snapshot of cache lookups since construction.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// CachedNormalizer wraps a TextNormalizer with an in-memory LRU cache.
// It is safe for concurrent use.
type CachedNormalizer struct {
	inner  domain.TextNormalizer
	cache  *lru.Cache[string, string]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedNormalizer creates a cache decorator around inner. A maxEntries
// of zero or less disables caching; every call goes to inner.
func NewCachedNormalizer(inner domain.TextNormalizer, maxEntries int) *CachedNormalizer {
	c := &CachedNormalizer{inner: inner}
	if maxEntries > 0 {
		// lru.New only fails for non-positive sizes.
		c.cache, _ = lru.New[string, string](maxEntries)
	}
	return c
}

// Normalize implements domain.TextNormalizer.
func (c *CachedNormalizer) Normalize(text string) string {
	if c.cache == nil {
		c.misses.Add(1)
		return c.inner.Normalize(text)
	}
	if out, ok := c.cache.Get(text); ok {
		c.hits.Add(1)
		return out
	}
	c.misses.Add(1)
	out := c.inner.Normalize(text)
	c.cache.Add(text, out)
	return out
}

// Stats returns the hit and miss counts so far.
func (c *CachedNormalizer) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Len reports the number of cached entries.
func (c *CachedNormalizer) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
