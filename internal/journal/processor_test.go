package journal

import (
	"encoding/json"
	"math"
	"testing"

	"hl-journal/internal/domain"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// fill builds a test fill with a consistent venue snapshot.
func fill(tid int64, coin, side, dir string, px, sz, startPos, closedPnl, fee float64, ts int64) *domain.Fill {
	return &domain.Fill{
		TID:           tid,
		OID:           tid,
		Coin:          coin,
		Px:            px,
		Sz:            sz,
		Side:          side,
		Dir:           dir,
		Time:          ts,
		StartPosition: startPos,
		ClosedPnl:     closedPnl,
		Fee:           fee,
		Wallet:        "0xabc",
	}
}

func TestBuildTrades_SimpleRoundTrip(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 10, 0, 0, 0.1, 0),
		fill(2, "BTC", domain.SideSell, "Close Long", 110, 10, 10, 100, 0.1, 100),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.Side != domain.SideBuy {
		t.Errorf("expected long side, got %s", tr.Side)
	}
	if !approx(tr.EntryPx, 100) || !approx(tr.ExitPx, 110) {
		t.Errorf("entry/exit mismatch: %f / %f", tr.EntryPx, tr.ExitPx)
	}
	if !approx(tr.Size, 10) {
		t.Errorf("expected size 10, got %f", tr.Size)
	}
	if !approx(tr.Pnl, 100) {
		t.Errorf("expected pnl 100, got %f", tr.Pnl)
	}
	if !approx(tr.Fees, 0.2) {
		t.Errorf("expected fees 0.2, got %f", tr.Fees)
	}
	if tr.HoldMs != 100 {
		t.Errorf("expected hold 100ms, got %d", tr.HoldMs)
	}
	if !approx(tr.MAE, 0) {
		t.Errorf("expected mae 0, got %f", tr.MAE)
	}
	if !approx(tr.MFE, 0.10) {
		t.Errorf("expected mfe 0.10, got %f", tr.MFE)
	}
	if tr.Orphan {
		t.Error("trade should not be orphan")
	}
}

func TestBuildTrades_ScaleIn(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "ETH", domain.SideBuy, "Open Long", 100, 5, 0, 0, 0, 0),
		fill(2, "ETH", domain.SideBuy, "Open Long", 102, 5, 5, 0, 0, 10),
		fill(3, "ETH", domain.SideSell, "Close Long", 110, 10, 10, 140, 0, 20),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	// weighted entry: (100*5 + 102*5) / 10 = 101
	if !approx(tr.EntryPx, 101) {
		t.Errorf("expected weighted entry 101, got %f", tr.EntryPx)
	}
	if !approx(tr.ExitPx, 110) {
		t.Errorf("expected exit 110, got %f", tr.ExitPx)
	}
	// mfe = (110-101)/101 rounded to 6 decimals
	if !approx(tr.MFE, 0.089109) {
		t.Errorf("expected mfe 0.089109, got %f", tr.MFE)
	}
	if !approx(tr.Pnl, 140) {
		t.Errorf("expected pnl 140, got %f", tr.Pnl)
	}
}

func TestBuildTrades_OrphanClose(t *testing.T) {
	fills := []*domain.Fill{
		fill(7, "SOL", domain.SideSell, "Close Long", 100, 5, 5, 50, 0, 0),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 orphan trade, got %d", len(trades))
	}

	tr := trades[0]
	if !tr.Orphan {
		t.Error("expected orphan flag")
	}
	// entry price is unknowable; falls back to last traded price
	if !approx(tr.EntryPx, 100) || !approx(tr.ExitPx, 100) {
		t.Errorf("expected entry=exit=100, got %f / %f", tr.EntryPx, tr.ExitPx)
	}
	if !approx(tr.Pnl, 50) {
		t.Errorf("expected pnl 50, got %f", tr.Pnl)
	}
}

func TestBuildTrades_ArtifactFiltered(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 50, 1, 0, 0, 0, 0),
		fill(2, "BTC", domain.SideSell, "Close Long", 50, 1, 1, 0, 0, 5),
	}

	trades := BuildTrades(fills)
	if len(trades) != 0 {
		t.Fatalf("expected artifact to be filtered, got %d trades", len(trades))
	}
}

func TestBuildTrades_ShortSide(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideSell, "Open Short", 100, 10, 0, 0, 0, 0),
		fill(2, "BTC", domain.SideBuy, "Close Short", 90, 10, -10, 100, 0, 100),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.IsLong() {
		t.Error("expected short trade")
	}
	// for a short: favorable extreme is the minimum price
	if !approx(tr.MFE, 0.10) {
		t.Errorf("expected mfe 0.10, got %f", tr.MFE)
	}
	if !approx(tr.MAE, 0) {
		t.Errorf("expected mae 0, got %f", tr.MAE)
	}
}

func TestBuildTrades_PartialCloseKeepsAccumulator(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 10, 0, 0, 0, 0),
		fill(2, "BTC", domain.SideSell, "Close Long", 105, 4, 10, 20, 0, 50),
		fill(3, "BTC", domain.SideSell, "Close Long", 110, 6, 6, 60, 0, 100),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade spanning both closes, got %d", len(trades))
	}

	tr := trades[0]
	if !approx(tr.Pnl, 80) {
		t.Errorf("expected pnl 80, got %f", tr.Pnl)
	}
	// exit = (105*4 + 110*6) / 10 = 108
	if !approx(tr.ExitPx, 108) {
		t.Errorf("expected exit 108, got %f", tr.ExitPx)
	}

	var ids []int64
	if err := json.Unmarshal([]byte(tr.FillIDs), &ids); err != nil {
		t.Fatalf("fill ids not valid JSON: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("expected fill ids [1 2 3] in discovery order, got %v", ids)
	}
}

func TestBuildTrades_UnclosedPositionDiscarded(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 10, 0, 0, 0.1, 0),
	}

	trades := BuildTrades(fills)
	if len(trades) != 0 {
		t.Fatalf("open position must not be reported, got %d trades", len(trades))
	}
}

func TestBuildTrades_UnknownDirFallback(t *testing.T) {
	// Malformed tags: position math decides. A non-flat fill opens, a fill
	// carrying realized pnl that flattens the position closes.
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "", 100, 10, 0, 0, 0.1, 0),
		fill(2, "BTC", domain.SideSell, "???", 110, 10, 10, 100, 0.1, 100),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade via fallback, got %d", len(trades))
	}
	if !approx(trades[0].Pnl, 100) {
		t.Errorf("expected pnl 100, got %f", trades[0].Pnl)
	}
	if !approx(trades[0].ExitPx, 110) {
		t.Errorf("expected exit 110, got %f", trades[0].ExitPx)
	}
}

func TestBuildTrades_UnknownDirFlatNoPosition(t *testing.T) {
	// Unknown tag, no live position, flat afterward: nothing to track.
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "", 100, 0, 0, 0, 0, 0),
	}

	if trades := BuildTrades(fills); len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
}

func TestBuildTrades_Determinism(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 10, 0, 0, 0.1, 0),
		fill(2, "ETH", domain.SideSell, "Open Short", 2000, 1, 0, 0, 0.2, 50),
		fill(3, "BTC", domain.SideSell, "Close Long", 110, 10, 10, 100, 0.1, 100),
		fill(4, "ETH", domain.SideBuy, "Close Short", 1900, 1, -1, 100, 0.2, 150),
	}

	reversed := make([]*domain.Fill, len(fills))
	for i, f := range fills {
		reversed[len(fills)-1-i] = f
	}

	a := BuildTrades(fills)
	b := BuildTrades(reversed)

	if len(a) != len(b) {
		t.Fatalf("trade counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if *a[i] != *b[i] {
			t.Errorf("trade %d differs across input orderings:\n%+v\n%+v", i, *a[i], *b[i])
		}
	}
}

func TestBuildTrades_SortedByOpenTime(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "ETH", domain.SideBuy, "Open Long", 2000, 1, 0, 0, 0, 500),
		fill(2, "ETH", domain.SideSell, "Close Long", 2100, 1, 1, 100, 0, 600),
		fill(3, "BTC", domain.SideBuy, "Open Long", 100, 1, 0, 0, 0, 0),
		fill(4, "BTC", domain.SideSell, "Close Long", 110, 1, 1, 10, 0, 100),
	}

	trades := BuildTrades(fills)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Coin != "BTC" || trades[1].Coin != "ETH" {
		t.Errorf("expected BTC trade first by open time, got %s then %s", trades[0].Coin, trades[1].Coin)
	}
}

func TestBuildTrades_TimestampTieKeepsInputOrder(t *testing.T) {
	// Two same-time fills: the stable sort must preserve input order, so the
	// open is still seen before the close.
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 1, 0, 0, 0.1, 42),
		fill(2, "BTC", domain.SideSell, "Close Long", 101, 1, 1, 1, 0.1, 42),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Orphan {
		t.Error("close must have matched the same-timestamp open, not become orphan")
	}
}

func TestBuildTrades_Conservation(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 3, 0, 0, 0.1, 0),
		fill(2, "BTC", domain.SideBuy, "Open Long", 101, 7, 3, 0, 0.1, 10),
		fill(3, "BTC", domain.SideSell, "Close Long", 105, 4, 10, 20, 0.1, 20),
		fill(4, "BTC", domain.SideSell, "Close Long", 108, 6, 6, 40, 0.1, 30),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	// entry size equals the sum of opening fill sizes
	if !approx(trades[0].Size, 10) {
		t.Errorf("expected entry size 10, got %f", trades[0].Size)
	}

	// the fill set, summed with sign by side, nets to zero
	net := 0.0
	for _, f := range fills {
		net += f.SignedSize()
	}
	if math.Abs(net) > eps {
		t.Errorf("fill set does not net flat: %f", net)
	}
}

func TestBuildTrades_LongMAEFromDrawdown(t *testing.T) {
	// Scale-in at a lower price drags the minimum below entry.
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 5, 0, 0, 0, 0),
		fill(2, "BTC", domain.SideBuy, "Open Long", 90, 5, 5, 0, 0, 10),
		fill(3, "BTC", domain.SideSell, "Close Long", 104, 10, 10, 90, 0, 20),
	}

	trades := BuildTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	// entry = (100*5 + 90*5)/10 = 95; min px 90 → mae = 5/95
	if !approx(tr.EntryPx, 95) {
		t.Errorf("expected entry 95, got %f", tr.EntryPx)
	}
	if !approx(tr.MAE, round6(5.0/95.0)) {
		t.Errorf("expected mae %f, got %f", round6(5.0/95.0), tr.MAE)
	}
	if !approx(tr.MFE, round6(9.0/95.0)) {
		t.Errorf("expected mfe %f, got %f", round6(9.0/95.0), tr.MFE)
	}
}

func TestBuildTrades_ConsecutiveRoundTrips(t *testing.T) {
	fills := []*domain.Fill{
		fill(1, "BTC", domain.SideBuy, "Open Long", 100, 1, 0, 0, 0.1, 0),
		fill(2, "BTC", domain.SideSell, "Close Long", 110, 1, 1, 10, 0.1, 100),
		fill(3, "BTC", domain.SideSell, "Open Short", 110, 2, 0, 0, 0.1, 200),
		fill(4, "BTC", domain.SideBuy, "Close Short", 100, 2, -2, 20, 0.1, 300),
	}

	trades := BuildTrades(fills)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if !trades[0].IsLong() || trades[1].IsLong() {
		t.Errorf("expected long then short, got %s then %s", trades[0].Side, trades[1].Side)
	}
	if !approx(trades[0].Pnl, 10) || !approx(trades[1].Pnl, 20) {
		t.Errorf("pnl mismatch: %f / %f", trades[0].Pnl, trades[1].Pnl)
	}
}
