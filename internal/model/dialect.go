package model

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder syntax and driver for the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("model: unsupported driver %q", name)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders into $n for Postgres. Quoted literals are
// left untouched.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var (
		b       strings.Builder
		n       int
		inQuote bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// FoldCase lowercases a search term the way the backend's LOWER() does.
// SQLite folds ASCII letters only, so other runes are kept as written there.
func (d Dialect) FoldCase(s string) string {
	if d == DialectPostgres {
		return strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// SQLiteDSN builds a modernc.org/sqlite DSN for a database file with WAL
// journaling and a busy timeout.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
}

// NewConn opens a go-zero SqlConn for the dialect and applies pool limits
// when positive.
func NewConn(d Dialect, dsn string, maxOpen, maxIdle int) (sqlx.SqlConn, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("model: %s dsn is required", d)
	}
	conn := sqlx.NewSqlConn(d.DriverName(), dsn)
	db, err := conn.RawDB()
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", d, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	return conn, nil
}
