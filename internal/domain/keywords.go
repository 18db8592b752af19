package domain

import (
	"slices"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// DefaultKeywords is the built-in flood vocabulary (Brazilian Portuguese).
var DefaultKeywords = []string{
	"alagamento",
	"alagamentos",
	"alagado",
	"alagada",
	"alagou",
	"chuva",
	"chuvas",
	"cheia",
	"enchente",
	"enchentes",
	"enxurrada",
	"inundação",
	"inundações",
	"inundou",
	"temporal",
	"transbordou",
	"deslizamento",
	"defesa civil",
}

// Vocabulary is an immutable ordered set of normalized keyword terms. It is
// safe for concurrent use.
type Vocabulary struct {
	terms   []string
	phrases [][]string
	matcher *ahocorasick.Matcher
}

// NewVocabulary normalizes each term with n, drops empty and repeated terms
// and keeps first-seen order.
func NewVocabulary(terms []string, n TextNormalizer) *Vocabulary {
	if n == nil {
		n = Normalizer{}
	}

	v := &Vocabulary{}
	seen := make(map[string]bool, len(terms))
	for _, raw := range terms {
		term := n.Normalize(raw)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		v.terms = append(v.terms, term)
		v.phrases = append(v.phrases, strings.Fields(term))
	}
	if len(v.terms) > 0 {
		v.matcher = ahocorasick.NewStringMatcher(v.terms)
	}
	return v
}

// Terms returns a copy of the normalized terms in order.
func (v *Vocabulary) Terms() []string { return slices.Clone(v.terms) }

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Count returns the total whole-token occurrences of every term in a
// normalized text. Substrings of longer words never count.
func (v *Vocabulary) Count(normalized string) int {
	total := 0
	for _, n := range v.countHits(normalized) {
		total += n
	}
	return total
}

// CountByTerm breaks Count down per term. Terms with no hits are omitted.
func (v *Vocabulary) CountByTerm(normalized string) map[string]int {
	hits := v.countHits(normalized)
	out := make(map[string]int, len(hits))
	for idx, n := range hits {
		out[v.terms[idx]] = n
	}
	return out
}

// countHits uses the automaton as a prefilter: only terms that occur as raw
// substrings are counted token by token.
func (v *Vocabulary) countHits(normalized string) map[int]int {
	if v.matcher == nil || normalized == "" {
		return nil
	}
	candidates := v.matcher.MatchThreadSafe([]byte(normalized))
	if len(candidates) == 0 {
		return nil
	}

	tokens := strings.Fields(normalized)
	hits := make(map[int]int, len(candidates))
	for _, idx := range candidates {
		if n := countPhrase(tokens, v.phrases[idx]); n > 0 {
			hits[idx] = n
		}
	}
	return hits
}

// countPhrase counts positions where phrase appears as consecutive tokens.
func countPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return 0
	}
	n := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(phrase)], phrase) {
			n++
		}
	}
	return n
}

// CountKeywords is the keyword tagger: total vocabulary hits in a normalized
// text.
func CountKeywords(normalized string, vocab *Vocabulary) int {
	if vocab == nil {
		return 0
	}
	return vocab.Count(normalized)
}
