package intent

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoagent/pkg/market"
)

type memStore struct {
	coins []market.Coin
	err   error
	calls []string
}

func (s *memStore) ListAll(context.Context) ([]market.Coin, error) {
	s.calls = append(s.calls, "list")
	if s.err != nil {
		return nil, s.err
	}
	out := append([]market.Coin(nil), s.coins...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) TopByMarketCap(_ context.Context, limit int) ([]market.Coin, error) {
	s.calls = append(s.calls, "top")
	if s.err != nil {
		return nil, s.err
	}
	out := append([]market.Coin(nil), s.coins...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MarketCap.USD != out[j].MarketCap.USD {
			return out[i].MarketCap.USD > out[j].MarketCap.USD
		}
		return out[i].ID < out[j].ID
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) FindByName(_ context.Context, substring string) ([]market.Coin, error) {
	s.calls = append(s.calls, "find:"+substring)
	if s.err != nil {
		return nil, s.err
	}
	var out []market.Coin
	for _, c := range s.coins {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(substring)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func amount(t *testing.T, literal string) market.Amount {
	t.Helper()
	a, err := market.ParseAmount(literal)
	require.NoError(t, err)
	return a
}

func sampleCoins(t *testing.T) []market.Coin {
	return []market.Coin{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: amount(t, "65000"), MarketCap: amount(t, "1.3e12")},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: amount(t, "3500.12"), MarketCap: amount(t, "420000000000")},
		{ID: "tether", Name: "Tether", Symbol: "usdt", CurrentPrice: amount(t, "1.0"), MarketCap: amount(t, "110000000000")},
	}
}

func TestResolve_ExplicitCoinByName(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	res, err := NewResolver(store, nil).Resolve(context.Background(), "what is the price of bitcoin")
	require.NoError(t, err)

	assert.Equal(t, ExplicitCoin, res.Intent)
	assert.Equal(t, PriceCrypto, res.Classified)
	require.NotNil(t, res.Coin)
	assert.Equal(t, "bitcoin", res.Coin.ID)
	assert.Equal(t, "Bitcoin (BTC): Current Price = $65000, Market Cap = $1300000000000.0", res.Context)
}

func TestResolve_ExplicitCoinBeatsTopPhrase(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	res, err := NewResolver(store, nil).Resolve(context.Background(), "top coins like bitcoin")
	require.NoError(t, err)

	assert.Equal(t, ExplicitCoin, res.Intent)
	assert.Equal(t, TopCrypto, res.Classified)
	require.NotNil(t, res.Coin)
	assert.Equal(t, "bitcoin", res.Coin.ID)
	assert.Equal(t, "Bitcoin (BTC): Current Price = $65000, Market Cap = $1300000000000.0", res.Context)
}

func TestResolve_ExplicitCoinBySymbolCaseInsensitive(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	res, err := NewResolver(store, nil).Resolve(context.Background(), "How is ETH doing?")
	require.NoError(t, err)
	assert.Equal(t, ExplicitCoin, res.Intent)
	assert.Equal(t, "Ethereum (ETH): Current Price = $3500.12, Market Cap = $420000000000", res.Context)
}

func TestResolve_ExplicitCoinPrefersLargestMarketCap(t *testing.T) {
	coins := []market.Coin{
		{ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "bch", CurrentPrice: amount(t, "400"), MarketCap: amount(t, "8000000000")},
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: amount(t, "65000"), MarketCap: amount(t, "1300000000000")},
	}
	res, err := NewResolver(&memStore{coins: coins}, nil).Resolve(context.Background(), "tell me about bitcoin cash")
	require.NoError(t, err)
	// Both names appear; the scan goes by market cap.
	assert.Equal(t, "bitcoin", res.Coin.ID)
}

func TestResolve_ExplicitCoinSkipsEmptyNames(t *testing.T) {
	coins := []market.Coin{
		{ID: "ghost", Name: "", Symbol: "", CurrentPrice: amount(t, "1"), MarketCap: amount(t, "9e15")},
		{ID: "tether", Name: "Tether", Symbol: "usdt", CurrentPrice: amount(t, "1.0"), MarketCap: amount(t, "110000000000")},
	}
	res, err := NewResolver(&memStore{coins: coins}, nil).Resolve(context.Background(), "tether please")
	require.NoError(t, err)
	assert.Equal(t, "tether", res.Coin.ID)
}

func TestResolve_TopWithEmptyTable(t *testing.T) {
	res, err := NewResolver(&memStore{}, nil).Resolve(context.Background(), "top 5 coins")
	require.NoError(t, err)
	assert.Equal(t, TopCrypto, res.Intent)
	assert.Nil(t, res.Coin)
	assert.Equal(t, "Top 5 Cryptocurrencies by Market Cap:", res.Context)
}

func TestResolve_TopListsCoins(t *testing.T) {
	coins := sampleCoins(t)[1:]
	res, err := NewResolver(&memStore{coins: coins}, nil).Resolve(context.Background(), "top coins")
	require.NoError(t, err)
	require.Equal(t, TopCrypto, res.Intent)
	want := "Top 5 Cryptocurrencies by Market Cap:\n" +
		"1. Ethereum (ETH): Price = $3500.12, Market Cap = $420000000000\n" +
		"2. Tether (USDT): Price = $1.0, Market Cap = $110000000000"
	assert.Equal(t, want, res.Context)
}

func TestResolve_PriceNotFound(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	res, err := NewResolver(store, nil).Resolve(context.Background(), "price of dogecoin")
	require.NoError(t, err)
	assert.Equal(t, PriceCrypto, res.Intent)
	assert.Equal(t, "Sorry, I couldn't find that cryptocurrency.", res.Context)
	assert.Contains(t, store.calls, "find:dogecoin")
}

func TestPriceContext_TrimsPunctuation(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	ctx, err := NewResolver(store, nil).PriceContext(context.Background(), "price of tether?")
	require.NoError(t, err)
	assert.Equal(t, "Tether (USDT): Current Price = $1.0, Market Cap = $110000000000", ctx)
}

func TestResolve_OtherHasEmptyContext(t *testing.T) {
	store := &memStore{coins: sampleCoins(t)}
	res, err := NewResolver(store, nil).Resolve(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, Other, res.Intent)
	assert.Empty(t, res.Context)
	assert.Nil(t, res.Coin)
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	store := &memStore{err: errors.New("db closed")}
	_, err := NewResolver(store, nil).Resolve(context.Background(), "top coins")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestResolve_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopLimit = 1
	cfg.NotFoundMessage = "no such coin"
	store := &memStore{coins: sampleCoins(t)[1:]}
	r := NewResolver(store, cfg)

	top, err := r.TopContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Top 1 Cryptocurrencies by Market Cap:\n1. Ethereum (ETH): Price = $3500.12, Market Cap = $420000000000", top)

	miss, err := r.PriceContext(context.Background(), "price of nothing")
	require.NoError(t, err)
	assert.Equal(t, "no such coin", miss)
}
