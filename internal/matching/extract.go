package matching

import (
	"regexp"
	"strings"
)

// UnknownAuthor is the fallback author when no pattern yields one.
const UnknownAuthor = "Unknown"

// Meta is the best-guess (author, title) pair derived from a filename.
type Meta struct {
	Author string `json:"author"`
	Title  string `json:"title"`
}

// HasAuthor reports whether extraction produced a real author.
func (m Meta) HasAuthor() bool {
	return m.Author != "" && m.Author != UnknownAuthor
}

var knownExtensions = []string{".fb2.zip", ".fb2", ".zip"}

var andOthersSuffix = regexp.MustCompile(`(?i)[,\s]+и\s+др(угие)?\.?\s*$`)

// ExtractMeta derives metadata from a raw filename. Total: never fails,
// worst case returns author "Unknown" and the cleaned stem as title, which
// downstream scoring rejects via the threshold. Rules are ordered, first
// match wins:
//
//  1. strip the extension
//  2. split author/title on the first dash not flanked by digits
//  3. scan the known-author list for a literal substring
//  4. fall back to author "Unknown", title = stem
//
// In every branch the title is prefixed with the series marker when it
// carries a series indicator.
func (c *Config) ExtractMeta(fileName string) Meta {
	stem := cleanStem(stripExtension(fileName))
	if stem == "" {
		return Meta{Author: UnknownAuthor, Title: ""}
	}

	if author, title, ok := splitOnDash(stem); ok {
		author = strings.TrimSpace(andOthersSuffix.ReplaceAllString(author, ""))
		if author == "" {
			author = UnknownAuthor
		}
		return Meta{Author: author, Title: c.prefixSeries(title)}
	}

	if author, title, ok := c.findKnownAuthor(stem); ok {
		return Meta{Author: author, Title: c.prefixSeries(title)}
	}

	return Meta{Author: UnknownAuthor, Title: c.prefixSeries(stem)}
}

func stripExtension(fileName string) string {
	lower := strings.ToLower(strings.TrimSpace(fileName))
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimSpace(fileName[:len(lower)-len(ext)])
		}
	}
	// Unknown single extension: strip a short trailing ".xxx" segment
	if i := strings.LastIndex(lower, "."); i > 0 && len(lower)-i <= 5 {
		return strings.TrimSpace(fileName[:i])
	}
	return strings.TrimSpace(fileName)
}

// cleanStem turns filename delimiters into spaces, keeping dashes for the
// separator rule and letter case for display.
func cleanStem(stem string) string {
	stem = strings.Map(func(r rune) rune {
		switch r {
		case '_', '.', '[', ']', '(', ')':
			return ' '
		}
		return r
	}, stem)
	return strings.Join(strings.Fields(stem), " ")
}

func isDash(r rune) bool {
	switch r {
	case '-', '–', '—', '−':
		return true
	}
	return false
}

// splitOnDash splits on the first dash-like rune whose immediate neighbours
// are not both digits (year ranges like 1941-1945 stay whole).
func splitOnDash(stem string) (author, title string, ok bool) {
	rs := []rune(stem)
	for i, r := range rs {
		if !isDash(r) {
			continue
		}
		if i > 0 && i < len(rs)-1 && isDigit(rs[i-1]) && isDigit(rs[i+1]) {
			continue
		}
		left := strings.TrimSpace(string(rs[:i]))
		right := strings.TrimSpace(string(rs[i+1:]))
		if left == "" || right == "" {
			continue
		}
		return left, right, true
	}
	return "", "", false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// findKnownAuthor scans the configured author list for a contiguous word
// match inside the stem; the remaining words become the title.
func (c *Config) findKnownAuthor(stem string) (author, title string, ok bool) {
	stemWords := strings.Fields(cleanDashes(stem))
	if len(stemWords) == 0 {
		return "", "", false
	}
	normStem := make([]string, len(stemWords))
	for i, w := range stemWords {
		normStem[i] = Normalize(w)
	}

	for _, known := range c.KnownAuthors {
		knownWords := strings.Fields(Normalize(known))
		if len(knownWords) == 0 || len(knownWords) > len(stemWords) {
			continue
		}
		for start := 0; start+len(knownWords) <= len(stemWords); start++ {
			if !wordsMatchAt(normStem, knownWords, start) {
				continue
			}
			rest := make([]string, 0, len(stemWords)-len(knownWords))
			rest = append(rest, stemWords[:start]...)
			rest = append(rest, stemWords[start+len(knownWords):]...)
			title = strings.Join(rest, " ")
			if title == "" {
				continue
			}
			return known, title, true
		}
	}
	return "", "", false
}

func cleanDashes(s string) string {
	return strings.Map(func(r rune) rune {
		if isDash(r) {
			return ' '
		}
		return r
	}, s)
}

func wordsMatchAt(stem, author []string, start int) bool {
	for i, w := range author {
		if stem[start+i] != w {
			return false
		}
	}
	return true
}

// prefixSeries prepends the series marker when the title carries a series
// indicator and is not already marked.
func (c *Config) prefixSeries(title string) string {
	if title == "" || c.SeriesMarker == "" {
		return title
	}
	lower := Normalize(title)
	marker := Normalize(c.SeriesMarker)
	if strings.Contains(lower, marker) {
		return title
	}
	for _, ind := range c.SeriesIndicators {
		if strings.Contains(lower, Normalize(ind)) {
			return c.SeriesMarker + " " + title
		}
	}
	return title
}
