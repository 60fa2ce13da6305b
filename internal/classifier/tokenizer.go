package classifier

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/timmy/govbiz/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Analyzer turns raw text into the term stream the vectorizer counts.
// An Analyzer is immutable and safe for concurrent use.
type Analyzer struct {
	cfg       domain.FeatureConfig
	stopWords map[string]struct{}
}

// NewAnalyzer validates cfg and builds an Analyzer for it.
// Parameters:
//   - cfg: feature settings, usually read back from a classifier artifact.
// Returns:
//   - *Analyzer: analyzer bound to cfg.
//   - error: non-nil if cfg asks for something the tokenizer cannot do.
func NewAnalyzer(cfg domain.FeatureConfig) (*Analyzer, error) {
	if err := ValidateFeatureConfig(cfg); err != nil {
		return nil, err
	}
	a := &Analyzer{cfg: cfg}
	if cfg.StopWords == "english" {
		a.stopWords = englishStopWords
	}
	return a, nil
}

// ValidateFeatureConfig reports whether cfg is supported by this tokenizer.
func ValidateFeatureConfig(cfg domain.FeatureConfig) error {
	switch cfg.StopWords {
	case "english", "none", "":
	default:
		return fmt.Errorf("unsupported stop word list %q", cfg.StopWords)
	}
	switch cfg.Norm {
	case "l2", "none", "":
	default:
		return fmt.Errorf("unsupported norm %q", cfg.Norm)
	}
	if cfg.MinTokenLen < 1 {
		return fmt.Errorf("min_token_len must be >= 1, got %d", cfg.MinTokenLen)
	}
	if cfg.NGramMin < 1 || cfg.NGramMax < cfg.NGramMin {
		return fmt.Errorf("invalid ngram range (%d, %d)", cfg.NGramMin, cfg.NGramMax)
	}
	if cfg.MinDF < 1 {
		return fmt.Errorf("min_df must be >= 1, got %d", cfg.MinDF)
	}
	if cfg.MaxDF <= 0 || cfg.MaxDF > 1 {
		return fmt.Errorf("max_df must be in (0, 1], got %g", cfg.MaxDF)
	}
	if cfg.MaxFeatures < 0 {
		return fmt.Errorf("max_features must be >= 0, got %d", cfg.MaxFeatures)
	}
	return nil
}

// Config returns the feature settings the analyzer was built with.
func (a *Analyzer) Config() domain.FeatureConfig {
	return a.cfg
}

// Tokens splits text into word tokens after case and accent folding.
// A token is a run of letters, digits or underscores at least MinTokenLen long.
func (a *Analyzer) Tokens(text string) []string {
	if a.cfg.StripAccents {
		text = stripAccents(text)
	}
	if a.cfg.Lowercase {
		text = strings.ToLower(text)
	}

	var tokens []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := text[start:end]
		start = -1
		if len([]rune(tok)) < a.cfg.MinTokenLen {
			return
		}
		if _, stop := a.stopWords[tok]; stop {
			return
		}
		tokens = append(tokens, tok)
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

// Terms returns the n-grams of text in document order. N-grams are built from
// the stop-word filtered token stream and joined by a single space.
func (a *Analyzer) Terms(text string) []string {
	tokens := a.Tokens(text)
	if a.cfg.NGramMin == 1 && a.cfg.NGramMax == 1 {
		return tokens
	}

	var terms []string
	for n := a.cfg.NGramMin; n <= a.cfg.NGramMax; n++ {
		if n == 1 {
			terms = append(terms, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
