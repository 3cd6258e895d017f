package intent

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cryptoagent/pkg/confkit"
)

// MatchMode selects how a rule compares the query with its phrases.
type MatchMode string

const (
	// MatchFuzzy accepts a phrase whose edit-distance similarity to the whole
	// query reaches the cutoff, or which appears verbatim in the query.
	MatchFuzzy MatchMode = "fuzzy"
	// MatchContains accepts a phrase that appears verbatim in the query.
	MatchContains MatchMode = "contains"
)

// Rule maps a phrase set onto an intent. Rules are tried in order.
type Rule struct {
	Intent  Intent    `yaml:"intent"`
	Match   MatchMode `yaml:"match"`
	Phrases []string  `yaml:"phrases"`
}

// Config drives the classifier and the context builders.
type Config struct {
	Cutoff          float64 `yaml:"cutoff"`
	TopLimit        int     `yaml:"top_limit"`
	NotFoundMessage string  `yaml:"not_found_message"`
	Rules           []Rule  `yaml:"rules"`
}

const (
	defaultCutoff          = 0.6
	defaultTopLimit        = 5
	defaultNotFoundMessage = "Sorry, I couldn't find that cryptocurrency."
)

// DefaultConfig returns the built-in phrase sets.
func DefaultConfig() *Config {
	return &Config{
		Cutoff:          defaultCutoff,
		TopLimit:        defaultTopLimit,
		NotFoundMessage: defaultNotFoundMessage,
		Rules: []Rule{
			{
				Intent:  TopCrypto,
				Match:   MatchFuzzy,
				Phrases: []string{"top coin", "top coins", "top crypto", "top cryptocurrencies", "top cryptos"},
			},
			{
				Intent:  PriceCrypto,
				Match:   MatchContains,
				Phrases: []string{"price of", "btc price", "bitcoin price", "price"},
			},
		},
	}
}

// LoadConfig reads an intent configuration file.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open intent config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader parses YAML, fills defaults and validates.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read intent config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal intent config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cutoff == 0 {
		c.Cutoff = defaultCutoff
	}
	if c.TopLimit == 0 {
		c.TopLimit = defaultTopLimit
	}
	if strings.TrimSpace(c.NotFoundMessage) == "" {
		c.NotFoundMessage = defaultNotFoundMessage
	}
	if len(c.Rules) == 0 {
		c.Rules = DefaultConfig().Rules
	}
	for i := range c.Rules {
		rule := &c.Rules[i]
		rule.Intent = Intent(strings.ToLower(strings.TrimSpace(string(rule.Intent))))
		rule.Match = MatchMode(strings.ToLower(strings.TrimSpace(string(rule.Match))))
		if rule.Match == "" {
			rule.Match = MatchContains
		}
		phrases := rule.Phrases[:0]
		for _, p := range rule.Phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				phrases = append(phrases, p)
			}
		}
		rule.Phrases = phrases
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Cutoff <= 0 || c.Cutoff > 1 {
		return fmt.Errorf("intent config: cutoff must be in (0, 1], got %v", c.Cutoff)
	}
	if c.TopLimit <= 0 {
		return fmt.Errorf("intent config: top_limit must be positive, got %d", c.TopLimit)
	}
	for i, rule := range c.Rules {
		switch rule.Intent {
		case TopCrypto, PriceCrypto:
		default:
			return fmt.Errorf("intent config: rule %d has unsupported intent %q", i, rule.Intent)
		}
		switch rule.Match {
		case MatchFuzzy, MatchContains:
		default:
			return fmt.Errorf("intent config: rule %d has unsupported match %q", i, rule.Match)
		}
		if len(rule.Phrases) == 0 {
			return fmt.Errorf("intent config: rule %d (%s) has no phrases", i, rule.Intent)
		}
	}
	return nil
}
