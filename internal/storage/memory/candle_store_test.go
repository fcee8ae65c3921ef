package memory

import (
	"context"
	"testing"

	"hl-journal/internal/domain"
)

func TestCandleStore_InsertBulkIdempotent(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 0, High: 101, Low: 99},
		{Coin: "BTC", Interval: "1m", OpenTime: 60_000, High: 102, Low: 100},
	}

	n, err := store.InsertBulk(ctx, candles)
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 inserted, got %d", n)
	}

	n, err = store.InsertBulk(ctx, candles)
	if err != nil {
		t.Fatalf("second InsertBulk failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 inserted on replay, got %d", n)
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	_, err := store.InsertBulk(ctx, []*domain.Candle{
		{Coin: "BTC", Interval: "1m", OpenTime: 120_000, High: 1, Low: 1},
		{Coin: "BTC", Interval: "1m", OpenTime: 0, High: 1, Low: 1},
		{Coin: "BTC", Interval: "1m", OpenTime: 60_000, High: 1, Low: 1},
		{Coin: "BTC", Interval: "5m", OpenTime: 0, High: 1, Low: 1},
		{Coin: "ETH", Interval: "1m", OpenTime: 0, High: 1, Low: 1},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "BTC", "1m", 0, 60_000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	if got[0].OpenTime != 0 || got[1].OpenTime != 60_000 {
		t.Errorf("expected ascending open times, got %d then %d", got[0].OpenTime, got[1].OpenTime)
	}
}
