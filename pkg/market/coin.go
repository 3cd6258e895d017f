package market

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coin is the canonical coin record shared by the loader, the query store
// and the intent resolver.
type Coin struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Symbol       string `db:"symbol" json:"symbol"`
	CurrentPrice Amount `db:"current_price" json:"current_price"`
	MarketCap    Amount `db:"market_cap" json:"market_cap"`
}

// Fact renders the single-line summary used to ground answers, e.g.
// "Bitcoin (BTC): Current Price = $65000, Market Cap = $1300000000000.0".
func (c Coin) Fact() string {
	return fmt.Sprintf("%s (%s): Current Price = $%s, Market Cap = $%s",
		c.Name, strings.ToUpper(c.Symbol), c.CurrentPrice, c.MarketCap)
}

// Amount is a USD figure that keeps the textual form it arrived with.
// Integer literals render verbatim; fractional or exponent literals render
// as a float with at least one decimal digit.
type Amount struct {
	USD  float64
	text string
}

// NewAmount builds an Amount rendered as a float.
func NewAmount(v float64) Amount {
	return Amount{USD: v, text: formatFloat(v)}
}

// ParseAmount parses a JSON number literal.
func ParseAmount(literal string) (Amount, error) {
	literal = strings.TrimSpace(literal)
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", literal, err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Amount{}, fmt.Errorf("parse amount %q: out of range", literal)
	}
	if strings.ContainsAny(literal, ".eE") {
		return Amount{USD: v, text: formatFloat(v)}, nil
	}
	return Amount{USD: v, text: literal}, nil
}

func (a Amount) String() string {
	if a.text == "" {
		return formatFloat(a.USD)
	}
	return a.text
}

// MarshalJSON emits the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number; null is rejected.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("amount is null")
	}
	if data[0] == '"' {
		return fmt.Errorf("amount must be a number, got %s", data)
	}
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; the display text is what gets stored.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
	case float64:
		*a = NewAmount(v)
	case int64:
		*a = Amount{USD: float64(v), text: strconv.FormatInt(v, 10)}
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
	return nil
}

// formatFloat mirrors the shortest round-trip float notation with a
// trailing ".0" for integral values below 1e16.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
