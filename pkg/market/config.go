package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"cryptoagent/pkg/confkit"
)

// ProviderCoinGecko is the registry type of the bundled CoinGecko provider.
const ProviderCoinGecko = "coingecko"

// Config names the market-data providers and which one feeds the pipeline.
type Config struct {
	Default   string                     `yaml:"default"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds the settings of one provider. String fields accept
// ${VAR} placeholders.
type ProviderConfig struct {
	Type     string `yaml:"type"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	CABundle string `yaml:"ca_bundle"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// ProviderBuilder constructs a Provider from its configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

var registry = struct {
	sync.RWMutex
	builders map[string]ProviderBuilder
}{builders: make(map[string]ProviderBuilder)}

// RegisterProvider makes a provider type available to configuration.
// Provider packages call it from init.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	registry.Lock()
	defer registry.Unlock()
	registry.builders[registryKey(typeName)] = builder
}

func builderFor(typeName string) (ProviderBuilder, bool) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.builders[registryKey(typeName)]
	return b, ok
}

func registryKey(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// DefaultConfig is a single CoinGecko provider on the public API, limited to
// one request every two seconds.
func DefaultConfig() *Config {
	return &Config{
		Default: ProviderCoinGecko,
		Providers: map[string]*ProviderConfig{
			ProviderCoinGecko: {
				Type:           ProviderCoinGecko,
				Timeout:        10 * time.Second,
				RateLimitRPS:   0.5,
				RateLimitBurst: 2,
			},
		},
	}
}

// LoadConfig reads a market config file.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader decodes, expands and validates a market config.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	for name, p := range cfg.Providers {
		if p == nil {
			return nil, fmt.Errorf("market config: provider %s is empty", name)
		}
		if err := p.normalise(name); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (p *ProviderConfig) normalise(name string) error {
	for _, field := range []*string{&p.Type, &p.BaseURL, &p.APIKey, &p.CABundle, &p.TimeoutRaw} {
		*field = strings.TrimSpace(os.ExpandEnv(*field))
	}
	if p.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(p.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("market provider %s: invalid timeout %q: %w", name, p.TimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("market provider %s: timeout must be positive, got %s", name, d)
	}
	p.Timeout = d
	return nil
}

// Validate checks provider types, rate limits and the default selection.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: providers cannot be empty")
	}
	for name, p := range c.Providers {
		switch {
		case strings.TrimSpace(name) == "":
			return fmt.Errorf("market config: provider name cannot be empty")
		case p == nil:
			return fmt.Errorf("market config: provider %s is empty", name)
		case p.Type == "":
			return fmt.Errorf("market config: provider %s must specify type", name)
		case p.RateLimitRPS < 0 || p.RateLimitBurst < 0:
			return fmt.Errorf("market config: provider %s rate limit must not be negative", name)
		}
		if _, ok := builderFor(p.Type); !ok {
			return fmt.Errorf("market config: provider %s has unsupported type %q", name, p.Type)
		}
	}
	_, err := c.defaultName()
	return err
}

func (c *Config) defaultName() (string, error) {
	if c.Default != "" {
		if _, ok := c.Providers[c.Default]; !ok {
			return "", fmt.Errorf("market config: default provider %q not defined", c.Default)
		}
		return c.Default, nil
	}
	if len(c.Providers) != 1 {
		return "", fmt.Errorf("market config: default provider required when more than one is configured")
	}
	names := make([]string, 0, 1)
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], nil
}

// BuildDefault instantiates the default provider, or the only configured one
// when no default is named.
func (c *Config) BuildDefault() (Provider, error) {
	name, err := c.defaultName()
	if err != nil {
		return nil, err
	}
	return c.Build(name)
}

// Build instantiates the named provider.
func (c *Config) Build(name string) (Provider, error) {
	p, ok := c.Providers[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("market config: provider %q not defined", name)
	}
	builder, ok := builderFor(p.Type)
	if !ok {
		return nil, fmt.Errorf("market provider %s: unsupported type %q", name, p.Type)
	}
	provider, err := builder(name, p)
	if err != nil {
		return nil, fmt.Errorf("market provider %s: %w", name, err)
	}
	return provider, nil
}
