package matching

import (
	"strings"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// Query is the file side of a scoring call: extracted metadata plus the raw
// search terms derived from the filename.
type Query struct {
	FileName    string
	Meta        Meta
	SearchTerms []string
}

// Result is one scored (file, catalog entry) pair. Score may be negative
// after penalties.
type Result struct {
	Book         domain.Book
	Score        int
	MatchedWords []string
}

// Score rates how well a catalog entry matches a query. Pure and
// deterministic: identical inputs always produce the identical result.
func (c *Config) Score(q Query, book domain.Book) Result {
	res := Result{Book: book}
	w := c.Weights

	fileWords := c.queryWords(q)
	if len(fileWords) == 0 {
		return res
	}

	titleWords := c.Words(book.Title)
	authorWords := c.Words(book.Author)
	bookWords := append(append([]string{}, titleWords...), authorWords...)

	// Per-word substring matches
	matched := 0
	for _, fw := range fileWords {
		if wordInSet(fw, bookWords) {
			res.Score += w.WordMatch
			res.MatchedWords = append(res.MatchedWords, fw)
			matched++
		}
	}

	// Tiered coverage bonuses, cumulative as coverage escalates
	coverage := float64(matched) / float64(len(fileWords))
	if matched == len(fileWords) {
		res.Score += w.AllWords
	}
	if coverage >= 0.7 {
		res.Score += w.SeventyPercent
	}
	if coverage >= 0.5 {
		res.Score += w.HalfWords
	}

	// Exact-equality bonuses on canonical forms
	canonTitle := c.Canonical(book.Title)
	canonAuthor := c.Canonical(book.Author)
	metaTitle := c.Canonical(q.Meta.Title)
	metaAuthor := ""
	if q.Meta.HasAuthor() {
		metaAuthor = c.Canonical(q.Meta.Author)
	}

	titleExact := metaTitle != "" && metaTitle == canonTitle
	authorExact := metaAuthor != "" && metaAuthor == canonAuthor
	if titleExact {
		res.Score += w.TitleExact
	}
	if authorExact {
		res.Score += w.AuthorExact
	}
	if titleExact && authorExact {
		res.Score += w.BothExact
	}

	// Combined substring bonus: both fields must hold
	if metaTitle != "" && metaAuthor != "" &&
		strings.Contains(canonTitle, metaTitle) &&
		strings.Contains(canonAuthor, metaAuthor) {
		res.Score += w.TitleAuthorSubstring
	}

	// Raw search terms, low weight
	for _, term := range q.SearchTerms {
		if wordInSet(Normalize(term), bookWords) {
			res.Score += w.SearchTermHit
		}
	}

	// False-positive penalty: theme keyword on exactly one side
	querySide := strings.Join(fileWords, " ") + " " + strings.Join(q.SearchTerms, " ")
	bookSide := canonTitle + " " + canonAuthor
	for _, kw := range c.NoiseKeywords {
		norm := Normalize(kw)
		if norm == "" {
			continue
		}
		inQuery := strings.Contains(querySide, norm)
		inBook := strings.Contains(bookSide, norm)
		if inQuery != inBook {
			res.Score -= w.NoisePenalty
		}
	}

	return res
}

// queryWords tokenizes the file side: extracted title and author when
// present, the raw filename otherwise.
func (c *Config) queryWords(q Query) []string {
	var parts []string
	if q.Meta.Title != "" {
		parts = append(parts, q.Meta.Title)
	}
	if q.Meta.HasAuthor() {
		parts = append(parts, q.Meta.Author)
	}
	if len(parts) == 0 {
		parts = append(parts, q.FileName)
	}
	return c.SearchWords(strings.Join(parts, " "))
}

// wordInSet reports whether the word matches any entry word by containment
// in either direction.
func wordInSet(word string, set []string) bool {
	for _, s := range set {
		if strings.Contains(s, word) || strings.Contains(word, s) {
			return true
		}
	}
	return false
}
