package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/time/rate"

	"cryptoagent/pkg/market"
)

const (
	defaultBaseURL     = "https://api.coingecko.com/api/v3"
	defaultHTTPTimeout = 10 * time.Second

	trendingPath = "/search/trending"
	marketsPath  = "/coins/markets"

	apiKeyHeader = "x-cg-demo-api-key"
)

var errInvalidJSON = errors.New("coingecko: response is not valid JSON")

// Client fetches raw documents from the CoinGecko public API. A single
// resty client (and its connection pool) backs every call.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter

	baseURL   string
	timeout   time.Duration
	apiKey    string
	caBundle  string
	transport http.RoundTripper
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the default API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPTimeout bounds each request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAPIKey sets the demo API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithRootCertificate restricts trust to the PEM bundle at path.
func WithRootCertificate(path string) Option {
	return func(c *Client) {
		c.caBundle = strings.TrimSpace(path)
	}
}

// WithTransport injects a custom round tripper (recorders, fakes).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		timeout: defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	rc := resty.New().
		SetBaseURL(client.baseURL).
		SetTimeout(client.timeout).
		SetHeader("accept", "application/json")
	if client.transport != nil {
		rc.SetTransport(client.transport)
	}
	if client.caBundle != "" {
		rc.SetRootCertificate(client.caBundle)
	}
	if client.apiKey != "" {
		rc.SetHeader(apiKeyHeader, client.apiKey)
	}
	client.http = rc
	return client
}

// Trending returns the /search/trending document.
func (c *Client) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, market.EndpointTrending, trendingPath, nil)
}

// Markets returns one page of /coins/markets.
func (c *Client) Markets(ctx context.Context, q market.MarketsQuery) (json.RawMessage, error) {
	params := map[string]string{
		"vs_currency": q.VsCurrency,
		"order":       q.Order,
		"per_page":    strconv.Itoa(q.PerPage),
		"page":        strconv.Itoa(q.Page),
		"sparkline":   strconv.FormatBool(q.Sparkline),
	}
	return c.get(ctx, market.EndpointMarkets, marketsPath, params)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &market.FetchError{Endpoint: endpoint, Err: err}
		}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, &market.FetchError{Endpoint: endpoint, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &market.FetchError{
			Endpoint: endpoint,
			Status:   resp.StatusCode(),
			Err:      fmt.Errorf("coingecko: %s", truncate(resp.String(), 256)),
		}
	}
	body := resp.Body()
	if !json.Valid(body) {
		return nil, &market.FetchError{Endpoint: endpoint, Status: resp.StatusCode(), Err: errInvalidJSON}
	}
	logx.WithContext(ctx).Debugf("coingecko: GET %s status=%d bytes=%d took=%dms",
		path, resp.StatusCode(), len(body), time.Since(start).Milliseconds())
	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
