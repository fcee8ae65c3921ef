package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

func TestTradeStore_ReplaceForWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	first := []*domain.Trade{
		{Coin: "BTC", Side: "long", EntryPx: 50000, ExitPx: 51000, Size: 0.5, Pnl: 500, Fees: 25.25, OpenTime: 1700000000000, CloseTime: 1700000100000, HoldMs: 100000, MAE: 0.002, MFE: 0.02, FillIDs: "[101,102]"},
		{Coin: "ETH", Side: "short", EntryPx: 3000, ExitPx: 2900, Size: 2, Pnl: 200, Fees: 4.1, OpenTime: 1700000200000, CloseTime: 1700000300000, HoldMs: 100000, MAE: 0.01, MFE: 0.033, FillIDs: "[103,104]"},
	}

	err := store.ReplaceForWallet(ctx, "0xabc", first)
	require.NoError(t, err)
	assert.NotZero(t, first[0].ID)
	assert.NotZero(t, first[1].ID)

	// a fresh rebuild replaces the whole set
	second := []*domain.Trade{
		{Coin: "SOL", Side: "long", EntryPx: 100, ExitPx: 110, Size: 10, Pnl: 100, Fees: 2, OpenTime: 1700000400000, CloseTime: 1700000500000, HoldMs: 100000, FillIDs: "[105]", Orphan: true},
	}
	err = store.ReplaceForWallet(ctx, "0xabc", second)
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SOL", got[0].Coin)
	assert.Equal(t, "[105]", got[0].FillIDs)
	assert.True(t, got[0].Orphan)
	assert.Equal(t, "0xabc", got[0].Wallet)
}

func TestTradeStore_GetByWalletOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	trades := []*domain.Trade{
		{Coin: "ETH", OpenTime: 200, FillIDs: "[]"},
		{Coin: "BTC", OpenTime: 100, FillIDs: "[]"},
	}
	require.NoError(t, store.ReplaceForWallet(ctx, "0xabc", trades))

	got, err := store.GetByWallet(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTC", got[0].Coin)
	assert.Equal(t, "ETH", got[1].Coin)
}

func TestTradeStore_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	trades := []*domain.Trade{{Coin: "BTC", OpenTime: 100, FillIDs: "[1,2]"}}
	require.NoError(t, store.ReplaceForWallet(ctx, "0xabc", trades))

	got, err := store.GetByID(ctx, trades[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "BTC", got.Coin)

	_, err = store.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
