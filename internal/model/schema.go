package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const coinMarketDataTable = "coin_market_data"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS coin_market_data (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    symbol         TEXT NOT NULL,
    current_price  TEXT NOT NULL,
    market_cap     TEXT NOT NULL,
    market_cap_usd DOUBLE PRECISION NOT NULL,
    loaded_at      BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_coin_market_data_market_cap ON coin_market_data (market_cap_usd DESC, id)`,
}

// EnsureSchema creates the coin table and its index when missing. The DDL is
// valid for both SQLite and Postgres.
func EnsureSchema(ctx context.Context, conn sqlx.SqlConn) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecCtx(ctx, stmt); err != nil {
			return fmt.Errorf("model: ensure schema: %w", err)
		}
	}
	return nil
}
