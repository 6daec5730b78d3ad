package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after canonical decomposition, folding
// diacritics onto their base letters (ё→е, й→и, ä→a). One-directional and
// lossy: recall over precision, applied identically to both sides of every
// comparison.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a string for comparison: Unicode composition,
// case folding, diacritic folding, delimiter collapse. Pure and idempotent.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Words tokenizes a string into normalized words: delimiter split, tokens
// shorter than two runes dropped, stopwords dropped, the standalone series
// marker dropped.
func (c *Config) Words(s string) []string {
	fields := strings.Fields(Normalize(s))
	words := make([]string, 0, len(fields))
	marker := Normalize(c.SeriesMarker)
	for _, w := range fields {
		if len([]rune(w)) < 2 {
			continue
		}
		if c.isStopword(w) {
			continue
		}
		if marker != "" && w == marker {
			continue
		}
		words = append(words, w)
	}
	return words
}

// SearchWords derives the deduplicated, order-preserving search-term set
// used for candidate retrieval.
func (c *Config) SearchWords(s string) []string {
	words := c.Words(s)
	seen := make(map[string]struct{}, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// Canonical reduces a string to its comparable form: normalized words
// joined by single spaces. Two names are "exactly equal" when their
// canonical forms match.
func (c *Config) Canonical(s string) string {
	return strings.Join(c.Words(s), " ")
}
