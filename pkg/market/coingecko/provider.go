package coingecko

import (
	"fmt"
	"os"

	"cryptoagent/pkg/market"
)

func init() {
	market.RegisterProvider(market.ProviderCoinGecko, func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		if cfg.CABundle != "" {
			if _, err := os.Stat(cfg.CABundle); err != nil {
				return nil, fmt.Errorf("ca bundle: %w", err)
			}
		}
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
			WithRootCertificate(cfg.CABundle),
			WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPTimeout(cfg.Timeout))
		}
		return NewClient(opts...), nil
	})
}
