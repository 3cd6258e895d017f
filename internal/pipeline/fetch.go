package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/market"
)

// FetchResult names the artifacts written by one fetch cycle.
type FetchResult struct {
	CapturedAt time.Time
	Trending   string
	MarketData string
}

// Artifacts lists the written artifact names.
func (r *FetchResult) Artifacts() []string {
	return []string{r.Trending, r.MarketData}
}

// Fetcher snapshots the provider's trending and market documents.
type Fetcher struct {
	provider market.Provider
	store    artifact.Store
	query    market.MarketsQuery
	nowFn    func() time.Time
}

// NewFetcher builds a Fetcher writing raw snapshots into store.
func NewFetcher(provider market.Provider, store artifact.Store, query market.MarketsQuery) *Fetcher {
	return &Fetcher{provider: provider, store: store, query: query, nowFn: time.Now}
}

// Fetch calls both endpoints concurrently. Nothing is written unless both
// succeed; if the second write fails the first artifact is removed again.
func (f *Fetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	var trending, markets json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := f.provider.Trending(gctx)
		if err != nil {
			return err
		}
		trending = body
		return nil
	})
	g.Go(func() error {
		body, err := f.provider.Markets(gctx, f.query)
		if err != nil {
			return err
		}
		markets = body
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	capturedAt := f.nowFn().UTC().Truncate(time.Second)
	result := &FetchResult{
		CapturedAt: capturedAt,
		Trending:   artifact.Name(artifact.KindTrending, capturedAt),
		MarketData: artifact.Name(artifact.KindMarketData, capturedAt),
	}
	if err := f.store.Put(ctx, result.Trending, trending); err != nil {
		return nil, fmt.Errorf("write %s: %w", result.Trending, err)
	}
	if err := f.store.Put(ctx, result.MarketData, markets); err != nil {
		if delErr := f.store.Delete(context.WithoutCancel(ctx), result.Trending); delErr != nil {
			logx.WithContext(ctx).Errorf("pipeline: roll back %s: %v", result.Trending, delErr)
		}
		return nil, fmt.Errorf("write %s: %w", result.MarketData, err)
	}
	return result, nil
}
