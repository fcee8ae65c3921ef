package refresh

import (
	"context"
	"errors"
	"testing"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage/memory"
)

// stubSource returns a canned fill history.
type stubSource struct {
	fills []*domain.Fill
	err   error
	calls int
}

func (s *stubSource) FetchAllFills(_ context.Context, wallet string) ([]*domain.Fill, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	for _, f := range s.fills {
		f.Wallet = wallet
	}
	return s.fills, nil
}

func roundTrip(coin string, baseTID int64, baseTime int64) []*domain.Fill {
	return []*domain.Fill{
		{TID: baseTID, Coin: coin, Side: domain.SideBuy, Dir: "Open Long", Px: 100, Sz: 1, Time: baseTime},
		{TID: baseTID + 1, Coin: coin, Side: domain.SideSell, Dir: "Close Long", Px: 110, Sz: 1, StartPosition: 1, ClosedPnl: 10, Time: baseTime + 1000},
	}
}

func TestService_RefreshBuildsAndStoresTrades(t *testing.T) {
	source := &stubSource{fills: roundTrip("BTC", 1, 1000)}
	fills := memory.NewFillStore()
	trades := memory.NewTradeStore()
	svc := NewService(source, fills, trades, nil, nil)
	ctx := context.Background()

	result, err := svc.Refresh(ctx, "0xabc")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(result))
	}
	if result[0].ID == 0 {
		t.Error("expected trade ID assigned by store")
	}
	if result[0].Wallet != "0xabc" {
		t.Errorf("expected wallet set, got %q", result[0].Wallet)
	}
	if result[0].Pnl != 10 {
		t.Errorf("expected pnl 10, got %v", result[0].Pnl)
	}

	cachedFills, err := fills.GetByWallet(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(cachedFills) != 2 {
		t.Errorf("expected 2 cached fills, got %d", len(cachedFills))
	}
}

func TestService_RefreshReplacesPreviousTrades(t *testing.T) {
	source := &stubSource{fills: roundTrip("BTC", 1, 1000)}
	trades := memory.NewTradeStore()
	svc := NewService(source, memory.NewFillStore(), trades, nil, nil)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, "0xabc"); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}

	// venue now reports a different history
	source.fills = append(roundTrip("BTC", 1, 1000), roundTrip("ETH", 10, 5000)...)
	if _, err := svc.Refresh(ctx, "0xabc"); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	stored, err := trades.GetByWallet(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 trades after second refresh, got %d", len(stored))
	}
}

func TestService_RefreshEmptyHistoryClearsTrades(t *testing.T) {
	source := &stubSource{fills: roundTrip("BTC", 1, 1000)}
	trades := memory.NewTradeStore()
	svc := NewService(source, memory.NewFillStore(), trades, nil, nil)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, "0xabc"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	source.fills = nil
	result, err := svc.Refresh(ctx, "0xabc")
	if err != nil {
		t.Fatalf("empty Refresh failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no trades, got %d", len(result))
	}

	stored, _ := trades.GetByWallet(ctx, "0xabc")
	if len(stored) != 0 {
		t.Errorf("expected trade set cleared, got %d", len(stored))
	}
}

func TestService_RefreshPropagatesFetchError(t *testing.T) {
	wantErr := errors.New("venue down")
	svc := NewService(&stubSource{err: wantErr}, memory.NewFillStore(), memory.NewTradeStore(), nil, nil)

	_, err := svc.Refresh(context.Background(), "0xabc")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
}

func TestService_EnsureTradesUsesCache(t *testing.T) {
	source := &stubSource{fills: roundTrip("BTC", 1, 1000)}
	svc := NewService(source, memory.NewFillStore(), memory.NewTradeStore(), nil, nil)
	ctx := context.Background()

	// cold cache: triggers a refresh
	first, err := svc.EnsureTrades(ctx, "0xabc")
	if err != nil {
		t.Fatalf("EnsureTrades failed: %v", err)
	}
	if len(first) != 1 || source.calls != 1 {
		t.Fatalf("expected one trade from one fetch, got %d trades, %d fetches", len(first), source.calls)
	}

	// warm cache: no second fetch
	second, err := svc.EnsureTrades(ctx, "0xabc")
	if err != nil {
		t.Fatalf("second EnsureTrades failed: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("expected 1 cached trade, got %d", len(second))
	}
	if source.calls != 1 {
		t.Errorf("expected no refetch on warm cache, got %d fetches", source.calls)
	}
}
