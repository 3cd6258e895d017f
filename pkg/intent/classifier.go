package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	ExplicitCoin Intent = "explicit_coin"
	TopCrypto    Intent = "top_crypto"
	PriceCrypto  Intent = "price_crypto"
	Other        Intent = "other"
)

// Classifier assigns a keyword intent to a query. It never fails: anything
// unrecognised is Other.
type Classifier struct {
	rules  []Rule
	cutoff float64
}

// NewClassifier builds a classifier; a nil config uses DefaultConfig.
func NewClassifier(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Classifier{rules: cfg.Rules, cutoff: cfg.Cutoff}
}

// Classify returns the intent of the first rule that matches, else Other.
func (c *Classifier) Classify(query string) Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Other
	}
	for _, rule := range c.rules {
		if c.matches(rule, q) {
			return rule.Intent
		}
	}
	return Other
}

func (c *Classifier) matches(rule Rule, q string) bool {
	for _, phrase := range rule.Phrases {
		// Whole-query similarity alone drops below the cutoff as soon as a
		// phrase is wrapped in a sentence ("what are the top coins today"),
		// so fuzzy rules accept a verbatim occurrence as well.
		if strings.Contains(q, phrase) {
			return true
		}
		if rule.Match == MatchFuzzy && Similarity(q, phrase) >= c.cutoff {
			return true
		}
	}
	return false
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes, so
// identical strings score 1 and disjoint strings approach 0.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
