package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameAndParse(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 3, 999, time.FixedZone("CET", 3600))
	name := Name(KindMarketData, ts)
	assert.Equal(t, "market_data_20240309_060503.json", name)

	kind, parsed, err := ParseName(name)
	require.NoError(t, err)
	assert.Equal(t, KindMarketData, kind)
	assert.True(t, parsed.Equal(ts.Truncate(time.Second)))

	kind, _, err = ParseName("market_data_cleaned_20240309_060503.json")
	require.NoError(t, err)
	assert.Equal(t, KindMarketDataCleaned, kind)

	for _, bad := range []string{"market_data.json", "market_data_2024_0101.json", "x_20241301_000000.json", "Trending_20240101_000000.json"} {
		_, _, err := ParseName(bad)
		assert.Error(t, err, bad)
	}
}

func TestNamesSortChronologically(t *testing.T) {
	earlier := Name(KindTrending, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC))
	later := Name(KindTrending, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestLatestSelectsExactKind(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		"market_data_20240101_000000.json",
		"market_data_20240102_000000.json",
		"market_data_cleaned_20240103_000000.json",
		"trending_20240104_000000.json",
		"market_data_notes.json",
	} {
		require.NoError(t, store.Put(ctx, name, []byte(`[]`)))
	}

	latest, err := Latest(ctx, store, KindMarketData)
	require.NoError(t, err)
	assert.Equal(t, "market_data_20240102_000000.json", latest)

	latest, err = Latest(ctx, store, KindMarketDataCleaned)
	require.NoError(t, err)
	assert.Equal(t, "market_data_cleaned_20240103_000000.json", latest)
}

func TestLatestNotFound(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = Latest(context.Background(), store, KindMarketData)
	assert.True(t, errors.Is(err, ErrNotFound))
}
