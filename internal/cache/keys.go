package cache

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptoagent/internal/config"
)

// Namespace is the Redis key prefix for the application.
const Namespace = "cryptoagent"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Coin table keys ---------------------------------------------------------

// CoinsEpochKey holds the id of the current coin table load. Every other coin
// key embeds it, so rotating the epoch retires all cached reads at once.
func CoinsEpochKey() string {
	return formatKey("coins", "epoch")
}

func CoinsTopKey(epoch string, limit int) string {
	return formatKey("coins", epoch, "top", strconv.Itoa(limit))
}

func CoinsAllKey(epoch string) string {
	return formatKey("coins", epoch, "all")
}

// CoinsByNameKey escapes the search term so user input cannot add key segments.
func CoinsByNameKey(epoch, substring string) string {
	return formatKey("coins", epoch, "name", "q="+url.QueryEscape(strings.ToLower(substring)))
}

// CoinsTTL is how long a cached read may live within one epoch.
func CoinsTTL(t TTLSet) time.Duration {
	return t.Duration(TTLMedium)
}
