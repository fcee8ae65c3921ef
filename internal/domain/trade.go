package domain

// Trade represents one completed round trip reconstructed from fills.
// Corresponds to the trades table in PostgreSQL.
type Trade struct {
	ID        int64   // storage-assigned identifier (0 until inserted)
	Wallet    string  // owning account address
	Coin      string  // instrument symbol
	Side      string  // side of the opening fill: "B" | "A"
	EntryPx   float64 // size-weighted average entry price
	ExitPx    float64 // size-weighted average exit price
	Size      float64 // total opening size
	Pnl       float64 // realized pnl over the round trip
	Fees      float64 // total fees over the round trip
	OpenTime  int64   // timestamp of the first fill (ms)
	CloseTime int64   // timestamp of the last fill (ms)
	HoldMs    int64   // CloseTime - OpenTime
	MAE       float64 // maximum adverse excursion, fraction of entry price
	MFE       float64 // maximum favorable excursion, fraction of entry price
	FillIDs   string  // JSON array of contributing fill ids, discovery order
	Orphan    bool    // opening fills predate the visible fill history
}

// IsLong reports whether the trade was opened by a buy.
func (t *Trade) IsLong() bool {
	return t.Side == SideBuy
}
