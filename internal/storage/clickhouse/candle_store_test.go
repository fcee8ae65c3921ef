package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl-journal/internal/domain"
)

func TestCandleStore_InsertBulkAndGetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	candles := []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 1700000000000, Open: 50000, High: 50100, Low: 49900, Close: 50050, Volume: 12.5},
		{Coin: "BTC", Interval: "1m", OpenTime: 1700000060000, Open: 50050, High: 50200, Low: 50000, Close: 50150, Volume: 8.2},
		{Coin: "ETH", Interval: "1m", OpenTime: 1700000000000, Open: 3000, High: 3010, Low: 2990, Close: 3005, Volume: 100},
	}

	n, err := store.InsertBulk(ctx, candles)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := store.GetByTimeRange(ctx, "BTC", "1m", 1700000000000, 1700000060000)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1700000000000), got[0].OpenTime)
	assert.Equal(t, 50100.0, got[0].High)
	assert.Equal(t, int64(1700000060000), got[1].OpenTime)
	assert.Equal(t, 50150.0, got[1].Close)
}

func TestCandleStore_InsertBulkSkipsExistingBuckets(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	candles := []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 1700000000000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1},
	}

	n, err := store.InsertBulk(ctx, candles)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.InsertBulk(ctx, candles)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCandleStore_GetByTimeRangeFiltersInterval(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	_, err := store.InsertBulk(ctx, []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 1700000000000, High: 1, Low: 1},
		{Coin: "BTC", Interval: "5m", OpenTime: 1700000000000, High: 1, Low: 1},
	})
	require.NoError(t, err)

	got, err := store.GetByTimeRange(ctx, "BTC", "5m", 0, 2000000000000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5m", got[0].Interval)
}
