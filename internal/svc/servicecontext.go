package svc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	"cryptoagent/internal/agent"
	cachekeys "cryptoagent/internal/cache"
	"cryptoagent/internal/config"
	"cryptoagent/internal/model"
	"cryptoagent/internal/pipeline"
	"cryptoagent/internal/repo"
	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/intent"
	"cryptoagent/pkg/journal"
	"cryptoagent/pkg/llm"
	"cryptoagent/pkg/market"
	_ "cryptoagent/pkg/market/coingecko"
)

// Answerer is the query-time entry point used by handlers and the console.
type Answerer interface {
	AnswerQuery(ctx context.Context, query string) (string, error)
}

type ServiceContext struct {
	Config config.Config

	DBConn    sqlx.SqlConn
	CoinModel model.CoinMarketDataModel
	Coins     *repo.CoinRepo

	Market    market.Provider
	Raw       artifact.Store
	Processed artifact.Store
	Journal   *journal.Writer
	Runner    *pipeline.Runner

	Resolver *intent.Resolver
	LLM      llm.LLMClient
	Agent    Answerer
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

type options struct {
	market market.Provider
	llm    llm.LLMClient
}

// WithMarketProvider replaces the configured market-data provider.
func WithMarketProvider(p market.Provider) Option {
	return func(o *options) { o.market = p }
}

// WithLLMClient replaces the configured language-model client.
func WithLLMClient(c llm.LLMClient) Option {
	return func(o *options) { o.llm = c }
}

func MustNewServiceContext(c config.Config, opts ...Option) *ServiceContext {
	svc, err := NewServiceContext(c, opts...)
	logx.Must(err)
	return svc
}

// NewServiceContext wires every collaborator from c.
func NewServiceContext(c config.Config, opts ...Option) (*ServiceContext, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.Background()
	svc := &ServiceContext{Config: c}

	if err := svc.initStore(ctx); err != nil {
		return nil, err
	}

	svc.Market = o.market
	if svc.Market == nil {
		provider, err := buildMarket(c)
		if err != nil {
			return nil, err
		}
		svc.Market = provider
	}

	var err error
	if svc.Raw, err = artifact.NewStore(ctx, c.Raw); err != nil {
		return nil, fmt.Errorf("raw artifact store: %w", err)
	}
	if svc.Processed, err = artifact.NewStore(ctx, c.Processed); err != nil {
		return nil, fmt.Errorf("processed artifact store: %w", err)
	}
	svc.Journal = journal.NewWriter(c.Pipeline.JournalDir)
	svc.Runner = pipeline.NewRunner(
		pipeline.NewFetcher(svc.Market, svc.Raw, market.DefaultMarketsQuery()),
		pipeline.NewNormalizer(svc.Raw, svc.Processed),
		pipeline.NewLoader(svc.Coins, svc.Processed),
		svc.Journal,
		c.Pipeline.StageTimeout,
	)

	svc.Resolver = intent.NewResolver(svc.Coins, c.Intent.ValueOr(intent.DefaultConfig))

	svc.LLM = o.llm
	if svc.LLM == nil {
		if svc.LLM, err = llm.New(c.LLM.ValueOr(llm.DefaultConfig)); err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
	}

	var tmpl *llm.PromptTemplate
	if c.PromptFile != "" {
		if tmpl, err = llm.NewPromptTemplate(c.PromptFile, nil); err != nil {
			return nil, err
		}
	}
	composer, err := agent.NewComposer(svc.LLM, tmpl, c.Query.AnswerTimeout)
	if err != nil {
		return nil, err
	}
	svc.Agent = agent.New(svc.Resolver, composer)

	return svc, nil
}

func (s *ServiceContext) initStore(ctx context.Context) error {
	c := s.Config
	dialect, err := model.ParseDialect(c.Store.Driver)
	if err != nil {
		return err
	}
	dsn := c.Store.DSN
	if dialect == model.DialectSQLite && dsn == "" {
		if err := os.MkdirAll(filepath.Dir(c.Store.Path), 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
		dsn = model.SQLiteDSN(c.Store.Path)
	}
	conn, err := model.NewConn(dialect, dsn, c.Store.MaxOpen, c.Store.MaxIdle)
	if err != nil {
		return err
	}
	if err := model.EnsureSchema(ctx, conn); err != nil {
		return err
	}
	s.DBConn = conn
	s.CoinModel = model.NewCoinMarketDataModel(conn, dialect)

	var coinCache repo.Cache
	if c.CacheEnabled() {
		coinCache = cache.New(c.Cache, syncx.NewSingleFlight(), cache.NewStat("coins"), model.ErrNotFound)
	}
	s.Coins = repo.NewCoinRepo(s.CoinModel, coinCache, cachekeys.NewTTLSet(c.TTL))
	return nil
}

func buildMarket(c config.Config) (market.Provider, error) {
	provider, err := c.Market.ValueOr(market.DefaultConfig).BuildDefault()
	if err != nil {
		return nil, fmt.Errorf("market provider: %w", err)
	}
	return provider, nil
}

// Close releases the database pool and LLM connections.
func (s *ServiceContext) Close() error {
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
	if s.DBConn == nil {
		return nil
	}
	db, err := s.DBConn.RawDB()
	if err != nil {
		return err
	}
	return db.Close()
}
