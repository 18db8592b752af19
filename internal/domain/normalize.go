package domain

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// urlRe matches http(s) links and bare www. hosts up to the next space.
	urlRe = regexp.MustCompile(`(?:https?://|www\.)\S+`)

	// mentionRe matches @user handles, including non-ASCII letters.
	mentionRe = regexp.MustCompile(`@[\p{L}\p{N}_]+`)

	// hashtagRe matches the marker of a hashtag so the word can be kept.
	hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_])`)
)

// TextNormalizer turns free text into a token-ready string.
type TextNormalizer interface {
	Normalize(text string) string
}

// Normalizer is the stateless TextNormalizer backed by NormalizeText.
type Normalizer struct{}

// Normalize implements TextNormalizer.
func (Normalizer) Normalize(text string) string { return NormalizeText(text) }

// NormalizeText cleans a post for keyword tagging. It is deterministic and
// total; degenerate input yields "".
//
// Steps, in order: decode HTML entities, lower-case, drop URLs, drop
// mentions, drop hashtag markers, replace punctuation and symbols with
// spaces, collapse whitespace, strip diacritics.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	s := html.UnescapeString(text)
	s = strings.ToLower(s)
	s = urlRe.ReplaceAllString(s, " ")
	s = mentionRe.ReplaceAllString(s, " ")
	s = hashtagRe.ReplaceAllString(s, "$1")
	s = strings.Map(keepWordRune, s)
	s = strings.Join(strings.Fields(s), " ")
	s = stripDiacritics(s)
	// A lone combining mark strips to nothing and can leave a double space.
	return strings.Join(strings.Fields(s), " ")
}

// keepWordRune maps everything that is not part of a word to a space.
// Combining marks survive so decomposed accents are handled by stripDiacritics.
func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
		return r
	}
	return ' '
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
