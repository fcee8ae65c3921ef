package memory

import (
	"context"
	"errors"
	"testing"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

func TestTradeStore_ReplaceForWallet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	first := []*domain.Trade{
		{Coin: "BTC", OpenTime: 100, Pnl: 10},
		{Coin: "ETH", OpenTime: 200, Pnl: -5},
	}
	if err := store.ReplaceForWallet(ctx, "0xabc", first); err != nil {
		t.Fatalf("ReplaceForWallet failed: %v", err)
	}
	if first[0].ID == 0 || first[1].ID == 0 {
		t.Error("expected IDs assigned on insert")
	}

	// replacing drops the previous set entirely
	second := []*domain.Trade{{Coin: "SOL", OpenTime: 300, Pnl: 7}}
	if err := store.ReplaceForWallet(ctx, "0xabc", second); err != nil {
		t.Fatalf("ReplaceForWallet failed: %v", err)
	}

	trades, err := store.GetByWallet(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(trades) != 1 || trades[0].Coin != "SOL" {
		t.Errorf("expected only the replacement set, got %+v", trades)
	}
}

func TestTradeStore_ReplaceIsScopedToWallet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.ReplaceForWallet(ctx, "0xaaa", []*domain.Trade{{Coin: "BTC", OpenTime: 1}}); err != nil {
		t.Fatalf("ReplaceForWallet failed: %v", err)
	}
	if err := store.ReplaceForWallet(ctx, "0xbbb", []*domain.Trade{{Coin: "ETH", OpenTime: 2}}); err != nil {
		t.Fatalf("ReplaceForWallet failed: %v", err)
	}

	a, _ := store.GetByWallet(ctx, "0xaaa")
	b, _ := store.GetByWallet(ctx, "0xbbb")
	if len(a) != 1 || len(b) != 1 {
		t.Errorf("wallets must be isolated: a=%d b=%d", len(a), len(b))
	}
}

func TestTradeStore_GetByID(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.Trade{{Coin: "BTC", OpenTime: 100}}
	if err := store.ReplaceForWallet(ctx, "0xabc", trades); err != nil {
		t.Fatalf("ReplaceForWallet failed: %v", err)
	}

	got, err := store.GetByID(ctx, trades[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Coin != "BTC" {
		t.Errorf("expected BTC, got %s", got.Coin)
	}

	_, err = store.GetByID(ctx, 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
