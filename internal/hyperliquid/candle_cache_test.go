package hyperliquid

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage/memory"
)

// countingSource returns canned candles and counts fetches.
type countingSource struct {
	candles []*domain.Candle
	calls   atomic.Int32
}

func (s *countingSource) FetchCandles(_ context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error) {
	s.calls.Add(1)
	return s.candles, nil
}

func TestCachedCandleSource_FetchesOnceThenServesFromCache(t *testing.T) {
	source := &countingSource{candles: []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 0, High: 101, Low: 99},
		{Coin: "BTC", Interval: "1m", OpenTime: 60_000, High: 102, Low: 100},
	}}
	cached := NewCachedCandleSource(source, memory.NewCandleStore(), nil)
	ctx := context.Background()

	got, err := cached.FetchCandles(ctx, "BTC", "1m", 0, 60_000)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), source.calls.Load())

	// fully covered range: no second venue call
	got, err = cached.FetchCandles(ctx, "BTC", "1m", 0, 60_000)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCachedCandleSource_PartialCoverageRefetches(t *testing.T) {
	source := &countingSource{candles: []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 0, High: 101, Low: 99},
		{Coin: "BTC", Interval: "1m", OpenTime: 60_000, High: 102, Low: 100},
		{Coin: "BTC", Interval: "1m", OpenTime: 120_000, High: 103, Low: 101},
	}}
	store := memory.NewCandleStore()
	cached := NewCachedCandleSource(source, store, nil)
	ctx := context.Background()

	// seed only the first bucket
	_, err := store.InsertBulk(ctx, []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 0, High: 101, Low: 99},
	})
	require.NoError(t, err)

	got, err := cached.FetchCandles(ctx, "BTC", "1m", 0, 120_000)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int32(1), source.calls.Load())

	// now covered
	_, err = cached.FetchCandles(ctx, "BTC", "1m", 0, 120_000)
	require.NoError(t, err)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCachedCandleSource_UnknownIntervalAlwaysFetches(t *testing.T) {
	source := &countingSource{candles: []*domain.Candle{
		{Coin: "BTC", Interval: "7m", OpenTime: 0},
	}}
	cached := NewCachedCandleSource(source, memory.NewCandleStore(), nil)
	ctx := context.Background()

	_, err := cached.FetchCandles(ctx, "BTC", "7m", 0, 420_000)
	require.NoError(t, err)
	_, err = cached.FetchCandles(ctx, "BTC", "7m", 0, 420_000)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}
