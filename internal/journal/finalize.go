package journal

import (
	"encoding/json"
	"math"

	"hl-journal/internal/domain"
)

// finalize converts a completed accumulator into an immutable trade record.
// Returns nil when the accumulator is a pure bookkeeping artifact (zero pnl,
// zero fees, not orphan); such round trips are never emitted.
func finalize(a *accumulator) *domain.Trade {
	if a == nil {
		return nil
	}

	entryPx := a.lastPx
	if a.entrySize > 0 {
		entryPx = a.entryValue / a.entrySize
	}
	exitPx := a.lastPx
	if a.exitSize > 0 {
		exitPx = a.exitValue / a.exitSize
	}

	// Excursions relative to entry, from the price bounds across all fills
	// that touched the position. For a long the adverse extreme is the
	// minimum, the favorable extreme the maximum; shorts are mirrored.
	var mae, mfe float64
	if entryPx > 0 {
		maePx, mfePx := a.minPx, a.maxPx
		if a.side != domain.SideBuy {
			maePx, mfePx = a.maxPx, a.minPx
		}
		mae = math.Abs(maePx-entryPx) / entryPx
		mfe = math.Abs(mfePx-entryPx) / entryPx
	}

	if math.Abs(a.realizedPnl) < flatEps && math.Abs(a.fees) < flatEps && !a.orphan {
		return nil
	}

	ids, _ := json.Marshal(a.fillIDs)

	return &domain.Trade{
		Wallet:    a.wallet,
		Coin:      a.coin,
		Side:      a.side,
		EntryPx:   round8(entryPx),
		ExitPx:    round8(exitPx),
		Size:      round8(a.entrySize),
		Pnl:       round6(a.realizedPnl),
		Fees:      round6(a.fees),
		OpenTime:  a.openTime,
		CloseTime: a.lastTime,
		HoldMs:    a.lastTime - a.openTime,
		MAE:       round6(mae),
		MFE:       round6(mfe),
		FillIDs:   string(ids),
		Orphan:    a.orphan,
	}
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

func round8(x float64) float64 {
	return math.Round(x*1e8) / 1e8
}
