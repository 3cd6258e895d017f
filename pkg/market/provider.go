package market

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider exposes the raw market documents the batch pipeline snapshots.
// Implementations return the response body untouched.
type Provider interface {
	// Trending returns the provider's trending-coins document.
	Trending(ctx context.Context) (json.RawMessage, error)
	// Markets returns one page of the market snapshot.
	Markets(ctx context.Context, q MarketsQuery) (json.RawMessage, error)
}

// MarketsQuery selects a page of the market snapshot.
type MarketsQuery struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	Sparkline  bool
}

// DefaultMarketsQuery returns the first 50 coins by market cap, priced in USD.
func DefaultMarketsQuery() MarketsQuery {
	return MarketsQuery{
		VsCurrency: "usd",
		Order:      "market_cap_desc",
		PerPage:    50,
		Page:       1,
		Sparkline:  false,
	}
}

// Endpoint names used in FetchError.
const (
	EndpointTrending = "trending"
	EndpointMarkets  = "markets"
)

// FetchError reports a failed provider call. Status is zero when no HTTP
// response was received.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
