package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		query string
		want  Intent
	}{
		{"top 5 coins", TopCrypto},
		{"Top Coins", TopCrypto},
		{"top cryptos", TopCrypto},
		{"show me the top cryptocurrencies today", TopCrypto},
		{"what is the price of dogecoin", PriceCrypto},
		{"BTC price", PriceCrypto},
		{"hello there", Other},
		{"", Other},
		{"   ", Other},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query))
		})
	}
}

func TestClassify_TopRuleWinsOverPrice(t *testing.T) {
	assert.Equal(t, TopCrypto, NewClassifier(nil).Classify("top coins price"))
}

func TestClassify_CutoffControlsFuzzyMatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Intent: TopCrypto, Match: MatchFuzzy, Phrases: []string{"top coins"}}}

	// "tp coins" is one edit from "top coins": 1 - 1/9.
	assert.Equal(t, TopCrypto, NewClassifier(cfg).Classify("tp coins"))

	cfg.Cutoff = 0.95
	assert.Equal(t, Other, NewClassifier(cfg).Classify("tp coins"))
}

func TestClassify_ContainsRuleIsNotFuzzy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Intent: PriceCrypto, Match: MatchContains, Phrases: []string{"price"}}}
	assert.Equal(t, Other, NewClassifier(cfg).Classify("prize"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("top", "top"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1-2.0/11, Similarity("top 5 coins", "top coins"), 1e-9)
	// Counted in runes, not bytes.
	assert.InDelta(t, 0.5, Similarity("éé", "éa"), 1e-9)
}
