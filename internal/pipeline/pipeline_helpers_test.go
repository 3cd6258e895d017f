package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/market"
)

const sampleMarkets = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":65000,"market_cap":1.3e12,"ath":73750.07,"roi":null},
  {"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3500.5,"market_cap":420000000000,"extra":{"nested":[1,2]}}
]`

type fakeProvider struct {
	mu            sync.Mutex
	trending      json.RawMessage
	markets       json.RawMessage
	trendingErr   error
	marketsErr    error
	marketsCalls  int
	trendingCalls int
	lastQuery     market.MarketsQuery
	// when set, each call announces itself on started and blocks until
	// release is closed
	started chan struct{}
	release chan struct{}
}

func (p *fakeProvider) wait(ctx context.Context) error {
	if p.started == nil {
		return nil
	}
	p.started <- struct{}{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.release:
		return nil
	}
}

func (p *fakeProvider) Trending(ctx context.Context) (json.RawMessage, error) {
	p.mu.Lock()
	p.trendingCalls++
	p.mu.Unlock()
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if p.trendingErr != nil {
		return nil, p.trendingErr
	}
	return p.trending, nil
}

func (p *fakeProvider) Markets(ctx context.Context, q market.MarketsQuery) (json.RawMessage, error) {
	p.mu.Lock()
	p.marketsCalls++
	p.lastQuery = q
	p.mu.Unlock()
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if p.marketsErr != nil {
		return nil, p.marketsErr
	}
	return p.markets, nil
}

// failingStore rejects Puts whose name starts with failPrefix.
type failingStore struct {
	artifact.Store
	failPrefix string
}

func (s *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if s.failPrefix != "" && strings.HasPrefix(name, s.failPrefix) {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, name, data)
}

func newFSStore(t *testing.T) *artifact.FSStore {
	t.Helper()
	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return store
}

type recordingWriter struct {
	calls [][]market.Coin
	err   error
}

func (w *recordingWriter) ReplaceAll(_ context.Context, coins []market.Coin) error {
	if w.err != nil {
		return w.err
	}
	w.calls = append(w.calls, coins)
	return nil
}
