package cache

import (
	"sync"
	"testing"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/stretchr/testify/assert"
)

// --- mock for cache tests ---

type countingNormalizer struct {
	mu    sync.Mutex
	calls int
}

func (m *countingNormalizer) Normalize(text string) string {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return domain.NormalizeText(text)
}

// --- CachedNormalizer tests ---

func TestCachedNormalizer_CacheHit(t *testing.T) {
	inner := &countingNormalizer{}
	cached := NewCachedNormalizer(inner, 10)

	assert.Equal(t, "enchente no centro", cached.Normalize("Enchente no CENTRO!"))
	assert.Equal(t, "enchente no centro", cached.Normalize("Enchente no CENTRO!"))

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, cached.Stats())
}

func TestCachedNormalizer_Eviction(t *testing.T) {
	inner := &countingNormalizer{}
	cached := NewCachedNormalizer(inner, 2)

	cached.Normalize("a")
	cached.Normalize("b")
	cached.Normalize("c") // evicts "a"
	assert.Equal(t, 2, cached.Len())

	cached.Normalize("a")
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, uint64(0), cached.Stats().Hits)
}

func TestCachedNormalizer_DisabledWhenSizeZero(t *testing.T) {
	inner := &countingNormalizer{}
	cached := NewCachedNormalizer(inner, 0)

	cached.Normalize("chuva")
	cached.Normalize("chuva")
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Len())
	assert.Equal(t, Stats{Misses: 2}, cached.Stats())
}

func TestCachedNormalizer_MatchesInner(t *testing.T) {
	cached := NewCachedNormalizer(domain.Normalizer{}, 16)
	for _, in := range []string{"Alagação em #Blumenau", "RT @defesacivil: ALERTA", ""} {
		assert.Equal(t, domain.NormalizeText(in), cached.Normalize(in), in)
	}
}

func TestCachedNormalizer_ConcurrentUse(t *testing.T) {
	inner := &countingNormalizer{}
	cached := NewCachedNormalizer(inner, 8)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, "rio transbordou", cached.Normalize("Rio transbordou"))
			}
		}()
	}
	wg.Wait()

	stats := cached.Stats()
	assert.Equal(t, uint64(16*50), stats.Hits+stats.Misses)
}
