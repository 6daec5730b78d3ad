package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// Weights are the scoring constants. They are data, not structure: tuning
// them changes match quality, never control flow.
type Weights struct {
	// WordMatch is added once per file word found in the entry's words
	WordMatch int `json:"word_match"`

	// AllWords / SeventyPercent / HalfWords are tiered coverage bonuses,
	// applied cumulatively as the matched fraction crosses each threshold
	AllWords       int `json:"all_words"`
	SeventyPercent int `json:"seventy_percent"`
	HalfWords      int `json:"half_words"`

	// TitleExact / AuthorExact compare canonical forms for equality;
	// BothExact is added on top when both hold
	TitleExact  int `json:"title_exact"`
	AuthorExact int `json:"author_exact"`
	BothExact   int `json:"both_exact"`

	// TitleAuthorSubstring requires the extracted title inside the entry
	// title and the extracted author inside the entry author, together
	TitleAuthorSubstring int `json:"title_author_substring"`

	// SearchTermHit is a low-weight bonus per raw search term present
	SearchTermHit int `json:"search_term_hit"`

	// NoisePenalty is subtracted per theme keyword present on exactly
	// one side
	NoisePenalty int `json:"noise_penalty"`
}

// Config carries every tunable of the matching heuristic: weights, the
// acceptance threshold, and the word lists the extractor and scorer consult.
type Config struct {
	Weights   Weights `json:"weights"`
	Threshold int     `json:"threshold"`

	// Stopwords are function words dropped during tokenization
	Stopwords []string `json:"stopwords"`

	// KnownAuthors are full author names scanned as literal substrings
	// when no separator rule applies
	KnownAuthors []string `json:"known_authors"`

	// NoiseKeywords are theme words prone to spurious overlap
	NoiseKeywords []string `json:"noise_keywords"`

	// SeriesIndicators mark a title as belonging to a series
	SeriesIndicators []string `json:"series_indicators"`

	// SeriesMarker is the word prefixed to series titles, and dropped
	// when it appears as a standalone token
	SeriesMarker string `json:"series_marker"`

	stopwords map[string]struct{}
}

// DefaultConfig returns the compiled default heuristic configuration.
func DefaultConfig() Config {
	cfg := Config{
		Weights: Weights{
			WordMatch:            10,
			AllWords:             30,
			SeventyPercent:       20,
			HalfWords:            10,
			TitleExact:           50,
			AuthorExact:          30,
			BothExact:            40,
			TitleAuthorSubstring: 25,
			SearchTermHit:        3,
			NoisePenalty:         20,
		},
		Threshold: 45,
		Stopwords: []string{
			// Russian function words
			"и", "в", "на", "с", "по", "из", "за", "от", "до",
			"не", "но", "об", "у", "к", "же", "ли", "бы",
			"для", "при", "или", "под", "над", "про",
			// English function words
			"the", "a", "an", "of", "and", "or", "in", "on",
			"at", "to", "for", "by", "with",
		},
		KnownAuthors: []string{
			"Сергей Лукьяненко",
			"Ник Перумов",
			"Дмитрий Глуховский",
			"Андрей Круз",
			"Вадим Панов",
			"Мария Семенова",
		},
		NoiseKeywords: []string{
			"сталкер", "метро", "академия", "вампиры", "зомби",
		},
		SeriesIndicators: []string{
			"грибница", "трилогия", "дилогия", "сборник", "антология",
		},
		SeriesMarker: "цикл",
	}
	cfg.compile()
	return cfg
}

// LoadConfig reads a full heuristic configuration from a JSON file,
// starting from the defaults so partial files only override what they name.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read match config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse match config: %w", err)
	}
	cfg.compile()
	return cfg, nil
}

func (c *Config) compile() {
	c.stopwords = make(map[string]struct{}, len(c.Stopwords))
	for _, w := range c.Stopwords {
		c.stopwords[Normalize(w)] = struct{}{}
	}
}

func (c *Config) isStopword(word string) bool {
	if c.stopwords == nil {
		c.compile()
	}
	_, ok := c.stopwords[word]
	return ok
}
