package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"cryptoagent/pkg/market"
)

// CoinStore is the read side of the coin table.
type CoinStore interface {
	ListAll(ctx context.Context) ([]market.Coin, error)
	TopByMarketCap(ctx context.Context, limit int) ([]market.Coin, error)
	FindByName(ctx context.Context, substring string) ([]market.Coin, error)
}

// Resolution is the outcome of resolving one query.
type Resolution struct {
	// Intent drives the context; ExplicitCoin wins over keyword intents.
	Intent Intent
	// Classified is the keyword intent, computed even when a coin was named.
	Classified Intent
	Coin       *market.Coin
	Context    string
}

// Resolver classifies a query and assembles its grounding context.
type Resolver struct {
	store      CoinStore
	classifier *Classifier
	topLimit   int
	notFound   string
}

// NewResolver wires a resolver over store; a nil config uses DefaultConfig.
func NewResolver(store CoinStore, cfg *Config) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Resolver{
		store:      store,
		classifier: NewClassifier(cfg),
		topLimit:   cfg.TopLimit,
		notFound:   cfg.NotFoundMessage,
	}
}

// Resolve classifies query and builds its context. Errors come only from the
// store; classification itself cannot fail.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	res := &Resolution{Classified: r.classifier.Classify(query)}

	coin, err := r.ExtractCoin(ctx, query)
	if err != nil {
		return nil, err
	}
	if coin != nil {
		res.Intent = ExplicitCoin
		res.Coin = coin
		res.Context = coin.Fact()
		return res, nil
	}

	res.Intent = res.Classified
	switch res.Intent {
	case TopCrypto:
		res.Context, err = r.TopContext(ctx)
	case PriceCrypto:
		res.Context, err = r.PriceContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ExtractCoin returns the first coin, by market cap, whose lower-cased name or
// symbol appears in the lower-cased query.
func (r *Resolver) ExtractCoin(ctx context.Context, query string) (*market.Coin, error) {
	coins, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract coin: %w", err)
	}
	sort.SliceStable(coins, func(i, j int) bool {
		if coins[i].MarketCap.USD != coins[j].MarketCap.USD {
			return coins[i].MarketCap.USD > coins[j].MarketCap.USD
		}
		return coins[i].ID < coins[j].ID
	})
	q := strings.ToLower(query)
	for i := range coins {
		name := strings.ToLower(strings.TrimSpace(coins[i].Name))
		symbol := strings.ToLower(strings.TrimSpace(coins[i].Symbol))
		if (name != "" && strings.Contains(q, name)) || (symbol != "" && strings.Contains(q, symbol)) {
			coin := coins[i]
			return &coin, nil
		}
	}
	return nil, nil
}

// TopContext renders the top coins as a numbered list under a header. With
// no coins only the header remains.
func (r *Resolver) TopContext(ctx context.Context) (string, error) {
	coins, err := r.store.TopByMarketCap(ctx, r.topLimit)
	if err != nil {
		return "", fmt.Errorf("top coins: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d Cryptocurrencies by Market Cap:\n", r.topLimit)
	for i, c := range coins {
		fmt.Fprintf(&b, "%d. %s (%s): Price = $%s, Market Cap = $%s\n",
			i+1, c.Name, strings.ToUpper(c.Symbol), c.CurrentPrice, c.MarketCap)
	}
	return strings.TrimSpace(b.String()), nil
}

// PriceContext searches coin names token by token and renders the first
// match, or the not-found sentence when nothing matches.
func (r *Resolver) PriceContext(ctx context.Context, query string) (string, error) {
	for _, token := range strings.Fields(query) {
		token = strings.TrimFunc(token, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if token == "" {
			continue
		}
		coins, err := r.store.FindByName(ctx, token)
		if err != nil {
			return "", fmt.Errorf("price lookup %q: %w", token, err)
		}
		if len(coins) > 0 {
			return coins[0].Fact(), nil
		}
	}
	return r.notFound, nil
}
