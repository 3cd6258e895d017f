package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/market"
)

// CoinWriter replaces the full coin table in one atomic unit of work.
type CoinWriter interface {
	ReplaceAll(ctx context.Context, coins []market.Coin) error
}

// LoadResult summarises one load.
type LoadResult struct {
	Source  string
	Loaded  int
	Skipped []*LoadError
}

// SkippedIDs renders skipped records for journaling.
func (r *LoadResult) SkippedIDs() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, e := range r.Skipped {
		if e.ID != "" {
			out = append(out, e.ID)
		} else {
			out = append(out, fmt.Sprintf("#%d", e.Index))
		}
	}
	return out
}

// Loader writes cleaned entries into the coin table. Malformed records are
// skipped and logged; the rest of the batch still loads.
type Loader struct {
	store     CoinWriter
	processed artifact.Store
}

func NewLoader(store CoinWriter, processed artifact.Store) *Loader {
	return &Loader{store: store, processed: processed}
}

// LoadLatest loads the newest market_data_cleaned artifact.
func (l *Loader) LoadLatest(ctx context.Context) (*LoadResult, error) {
	source, err := artifact.Latest(ctx, l.processed, artifact.KindMarketDataCleaned)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	if err != nil {
		return nil, err
	}
	data, err := l.processed.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	entries, err := ParseSnapshot(source, data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, source, entries)
}

// Load replaces the coin table with entries. A non-empty batch in which no
// record decodes is rejected so schema drift cannot wipe the table.
func (l *Loader) Load(ctx context.Context, source string, entries []Entry) (*LoadResult, error) {
	result := &LoadResult{Source: source}
	coins := make([]market.Coin, 0, len(entries))
	for i, entry := range entries {
		coin, err := DecodeCoin(i, entry)
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				result.Skipped = append(result.Skipped, loadErr)
			}
			logx.WithContext(ctx).Errorf("pipeline: skip %s: %v", source, err)
			continue
		}
		coins = append(coins, coin)
	}
	if len(entries) > 0 && len(coins) == 0 {
		return result, fmt.Errorf("load %s: all %d records malformed, keeping current table", source, len(entries))
	}
	if err := l.store.ReplaceAll(ctx, coins); err != nil {
		return result, fmt.Errorf("load %s: %w", source, err)
	}
	result.Loaded = len(coins)
	return result, nil
}

// DecodeCoin extracts the stored fields of one entry by name.
func DecodeCoin(index int, e Entry) (market.Coin, error) {
	var coin market.Coin
	if err := decodeString(e, "id", &coin.ID); err != nil {
		return coin, &LoadError{Index: index, Field: "id", Err: err}
	}
	if strings.TrimSpace(coin.ID) == "" {
		return coin, &LoadError{Index: index, Field: "id", Err: errors.New("empty")}
	}
	fields := []struct {
		name string
		dst  any
	}{
		{"name", &coin.Name},
		{"symbol", &coin.Symbol},
		{"current_price", &coin.CurrentPrice},
		{"market_cap", &coin.MarketCap},
	}
	for _, f := range fields {
		raw, ok := e[f.name]
		if !ok {
			return coin, &LoadError{Index: index, ID: coin.ID, Field: f.name, Err: errors.New("missing")}
		}
		if string(raw) == "null" {
			return coin, &LoadError{Index: index, ID: coin.ID, Field: f.name, Err: errors.New("null")}
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return coin, &LoadError{Index: index, ID: coin.ID, Field: f.name, Err: err}
		}
	}
	return coin, nil
}

func decodeString(e Entry, field string, dst *string) error {
	raw, ok := e[field]
	if !ok {
		return errors.New("missing")
	}
	if string(raw) == "null" {
		return errors.New("null")
	}
	return json.Unmarshal(raw, dst)
}
