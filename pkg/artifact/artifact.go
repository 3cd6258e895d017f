// Package artifact names and stores the JSON documents produced by the batch
// pipeline. Names follow {kind}_{YYYYMMDD_HHMMSS}.json so that lexicographic
// and chronological order coincide.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind identifies what an artifact holds.
type Kind string

const (
	KindTrending          Kind = "trending"
	KindMarketData        Kind = "market_data"
	KindMarketDataCleaned Kind = "market_data_cleaned"
)

const (
	timestampLayout = "20060102_150405"
	extension       = ".json"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact: not found")

var namePattern = regexp.MustCompile(`^([a-z][a-z0-9_]*)_(\d{8}_\d{6})\.json$`)

// Store is a flat namespace of artifacts.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns names starting with prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Name formats the artifact name for kind captured at ts (UTC, second precision).
func Name(kind Kind, ts time.Time) string {
	return string(kind) + "_" + ts.UTC().Format(timestampLayout) + extension
}

// ParseName splits an artifact name into its kind and capture time.
func ParseName(name string) (Kind, time.Time, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, fmt.Errorf("artifact: malformed name %q", name)
	}
	ts, err := time.ParseInLocation(timestampLayout, m[2], time.UTC)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("artifact: malformed timestamp in %q: %w", name, err)
	}
	return Kind(m[1]), ts, nil
}

// Latest returns the most recent artifact of exactly the given kind.
func Latest(ctx context.Context, store Store, kind Kind) (string, error) {
	names, err := store.List(ctx, string(kind)+"_")
	if err != nil {
		return "", fmt.Errorf("list %s artifacts: %w", kind, err)
	}
	latest := ""
	for _, name := range names {
		k, _, err := ParseName(name)
		if err != nil || k != kind {
			continue
		}
		if strings.Compare(name, latest) > 0 {
			latest = name
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return latest, nil
}
