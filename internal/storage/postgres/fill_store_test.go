package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl-journal/internal/domain"
)

func TestFillStore_InsertBulkAndGetByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	fills := []*domain.Fill{
		{TID: 101, OID: 11, Wallet: "0xabc", Coin: "BTC", Px: 50000, Sz: 0.5, Side: domain.SideBuy, Dir: "Open Long", Time: 1700000000000, StartPosition: 0, ClosedPnl: 0, Fee: 12.5, Hash: "0xh1", Crossed: true},
		{TID: 102, OID: 12, Wallet: "0xabc", Coin: "BTC", Px: 51000, Sz: 0.5, Side: domain.SideSell, Dir: "Close Long", Time: 1700000100000, StartPosition: 0.5, ClosedPnl: 500, Fee: 12.75, Hash: "0xh2", Crossed: false},
	}

	n, err := store.InsertBulk(ctx, fills)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.GetByWallet(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(101), got[0].TID)
	assert.Equal(t, "Open Long", got[0].Dir)
	assert.Equal(t, 50000.0, got[0].Px)
	assert.True(t, got[0].Crossed)
	assert.Equal(t, 500.0, got[1].ClosedPnl)
}

func TestFillStore_InsertBulkSkipsExistingTIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	_, err := store.InsertBulk(ctx, []*domain.Fill{
		{TID: 1, Wallet: "0xabc", Coin: "ETH", Time: 100},
	})
	require.NoError(t, err)

	// overlapping page: known tid skipped, new tid inserted
	n, err := store.InsertBulk(ctx, []*domain.Fill{
		{TID: 1, Wallet: "0xabc", Coin: "ETH", Time: 100},
		{TID: 2, Wallet: "0xabc", Coin: "ETH", Time: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetByWallet(ctx, "0xabc")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFillStore_GetByWalletEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)

	got, err := store.GetByWallet(context.Background(), "0xnobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
