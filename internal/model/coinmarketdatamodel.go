package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"cryptoagent/pkg/market"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = sqlx.ErrNotFound

var _ CoinMarketDataModel = (*defaultCoinMarketDataModel)(nil)

const (
	coinMarketDataRows = "id, name, symbol, current_price, market_cap"
	likeEscape         = '!'
)

type (
	// CoinMarketDataModel is the query store over the coin_market_data table.
	CoinMarketDataModel interface {
		FindOne(ctx context.Context, id string) (*market.Coin, error)
		// TopByMarketCap returns up to limit coins by market cap descending,
		// ties by id ascending. limit <= 0 yields no rows.
		TopByMarketCap(ctx context.Context, limit int) ([]market.Coin, error)
		// FindByName matches name case-insensitively; an empty substring
		// matches every coin.
		FindByName(ctx context.Context, substring string) ([]market.Coin, error)
		// ListAll returns every coin ordered by id.
		ListAll(ctx context.Context) ([]market.Coin, error)
		Count(ctx context.Context) (int64, error)
		// ReplaceAll swaps the table contents for coins in one transaction.
		ReplaceAll(ctx context.Context, coins []market.Coin) error
	}

	defaultCoinMarketDataModel struct {
		conn    sqlx.SqlConn
		table   string
		dialect Dialect
		nowFn   func() time.Time
	}
)

// NewCoinMarketDataModel returns a model for the coin_market_data table.
func NewCoinMarketDataModel(conn sqlx.SqlConn, dialect Dialect) CoinMarketDataModel {
	return &defaultCoinMarketDataModel{
		conn:    conn,
		table:   coinMarketDataTable,
		dialect: dialect,
		nowFn:   time.Now,
	}
}

func (m *defaultCoinMarketDataModel) FindOne(ctx context.Context, id string) (*market.Coin, error) {
	query := m.dialect.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", coinMarketDataRows, m.table))
	var resp market.Coin
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("coin_market_data.FindOne: %w", err)
	}
}

func (m *defaultCoinMarketDataModel) TopByMarketCap(ctx context.Context, limit int) ([]market.Coin, error) {
	if limit <= 0 {
		return []market.Coin{}, nil
	}
	query := m.dialect.Rebind(fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY market_cap_usd DESC, id ASC LIMIT ?", coinMarketDataRows, m.table))
	resp := []market.Coin{}
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, limit); err != nil {
		return nil, fmt.Errorf("coin_market_data.TopByMarketCap: %w", err)
	}
	return resp, nil
}

func (m *defaultCoinMarketDataModel) FindByName(ctx context.Context, substring string) ([]market.Coin, error) {
	query := m.dialect.Rebind(fmt.Sprintf(
		"SELECT %s FROM %s WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY market_cap_usd DESC, id ASC",
		coinMarketDataRows, m.table))
	pattern := "%" + escapeLike(m.dialect.FoldCase(substring)) + "%"
	resp := []market.Coin{}
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, pattern); err != nil {
		return nil, fmt.Errorf("coin_market_data.FindByName: %w", err)
	}
	return resp, nil
}

func (m *defaultCoinMarketDataModel) ListAll(ctx context.Context) ([]market.Coin, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id ASC", coinMarketDataRows, m.table)
	resp := []market.Coin{}
	if err := m.conn.QueryRowsCtx(ctx, &resp, query); err != nil {
		return nil, fmt.Errorf("coin_market_data.ListAll: %w", err)
	}
	return resp, nil
}

func (m *defaultCoinMarketDataModel) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := m.conn.QueryRowCtx(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", m.table)); err != nil {
		return 0, fmt.Errorf("coin_market_data.Count: %w", err)
	}
	return n, nil
}

func (m *defaultCoinMarketDataModel) ReplaceAll(ctx context.Context, coins []market.Coin) error {
	insert := m.dialect.Rebind(fmt.Sprintf(`INSERT INTO %s (id, name, symbol, current_price, market_cap, market_cap_usd, loaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    symbol = excluded.symbol,
    current_price = excluded.current_price,
    market_cap = excluded.market_cap,
    market_cap_usd = excluded.market_cap_usd,
    loaded_at = excluded.loaded_at`, m.table))
	loadedAt := m.nowFn().UTC().UnixMilli()

	return m.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		if _, err := session.ExecCtx(ctx, fmt.Sprintf("DELETE FROM %s", m.table)); err != nil {
			return fmt.Errorf("coin_market_data.ReplaceAll clear: %w", err)
		}
		for _, c := range coins {
			if _, err := session.ExecCtx(ctx, insert,
				c.ID,
				c.Name,
				c.Symbol,
				c.CurrentPrice.String(),
				c.MarketCap.String(),
				c.MarketCap.USD,
				loadedAt,
			); err != nil {
				return fmt.Errorf("coin_market_data.ReplaceAll insert %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == likeEscape || r == '%' || r == '_' {
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}
