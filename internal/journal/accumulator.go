package journal

import (
	"hl-journal/internal/domain"
)

// flatEps is the tolerance for treating a position as flat.
const flatEps = 1e-9

// accumulator is the mutable in-progress state for one not-yet-closed round
// trip. At most one accumulator is alive per coin at any time.
type accumulator struct {
	wallet string
	coin   string
	side   string // side of the fill that opened the position

	entryValue float64 // Σ px*sz over opening fills
	entrySize  float64
	exitValue  float64 // Σ px*sz over closing fills
	exitSize   float64

	realizedPnl float64
	fees        float64

	openTime int64
	lastTime int64
	lastPx   float64

	// price bounds across every fill that touched the position
	maxPx float64
	minPx float64

	fillIDs []int64 // discovery order; duplicates impossible by construction

	// orphan marks an accumulator synthesized from a close with no visible
	// open; its true entry price is unknowable.
	orphan bool
}

// newAccumulator seeds an accumulator from the fill that starts a position.
func newAccumulator(f *domain.Fill) *accumulator {
	return &accumulator{
		wallet:     f.Wallet,
		coin:       f.Coin,
		side:       f.Side,
		entryValue: f.Px * f.Sz,
		entrySize:  f.Sz,
		fees:       f.Fee,
		openTime:   f.Time,
		lastTime:   f.Time,
		lastPx:     f.Px,
		maxPx:      f.Px,
		minPx:      f.Px,
		fillIDs:    []int64{f.TID},
	}
}

// extendBounds widens the running max/min price with a fill's price.
func (a *accumulator) extendBounds(px float64) {
	if px > a.maxPx {
		a.maxPx = px
	}
	if px < a.minPx {
		a.minPx = px
	}
}

// scaleIn folds an additional opening fill into an existing position.
// The side derived from the first fill is kept as-is.
func (a *accumulator) scaleIn(f *domain.Fill) {
	a.entryValue += f.Px * f.Sz
	a.entrySize += f.Sz
	a.fees += f.Fee
	a.fillIDs = append(a.fillIDs, f.TID)
	a.extendBounds(f.Px)
}

// applyClose folds a closing fill into the position.
func (a *accumulator) applyClose(f *domain.Fill) {
	a.realizedPnl += f.ClosedPnl
	a.fees += f.Fee
	a.fillIDs = append(a.fillIDs, f.TID)
	a.extendBounds(f.Px)
	a.exitValue += f.Px * f.Sz
	a.exitSize += f.Sz
	a.lastPx = f.Px
	a.lastTime = f.Time
}

// applyUnknown handles a fill whose direction tag is unusable. The fill is
// treated as close-like: fees and exit accumulation (only when the fill
// carries realized pnl), bounds, and last price/time.
func (a *accumulator) applyUnknown(f *domain.Fill) {
	a.fees += f.Fee
	a.fillIDs = append(a.fillIDs, f.TID)
	if f.ClosedPnl != 0 {
		a.realizedPnl += f.ClosedPnl
		a.exitValue += f.Px * f.Sz
		a.exitSize += f.Sz
	}
	a.extendBounds(f.Px)
	a.lastPx = f.Px
	a.lastTime = f.Time
}

// applyFill threads the per-coin state through one fill: it takes the live
// accumulator (or nil) and returns the next accumulator (nil once the
// position returned to flat) plus the finalized trade, if this fill completed
// a non-trivial round trip.
func applyFill(acc *accumulator, f *domain.Fill) (*accumulator, *domain.Trade) {
	endPos := f.EndPosition()

	switch domain.ParseDirection(f.Dir) {
	case domain.DirectionOpen:
		if acc == nil {
			acc = newAccumulator(f)
		} else {
			acc.scaleIn(f)
		}
		return acc, nil

	case domain.DirectionClose:
		if acc == nil {
			// Orphan close: the position predates the visible fill history.
			// Synthesize state from this fill; entry price falls back to the
			// last traded price at finalization.
			acc = newAccumulator(f)
			acc.orphan = true
			acc.realizedPnl += f.ClosedPnl
		} else {
			acc.applyClose(f)
		}
		// A correctly tagged flip fill (close of one direction that also opens
		// the opposite) lands here too and is NOT split into a close-then-
		// reopen pair: if the resulting position is non-zero the accumulator
		// simply stays open and absorbs what follows.
		if abs(endPos) < flatEps {
			trade := finalize(acc)
			return nil, trade
		}
		return acc, nil

	default:
		// Defensive fallback for malformed tags: position math decides.
		if acc == nil {
			if abs(endPos) > flatEps {
				acc = newAccumulator(f)
			}
			return acc, nil
		}
		acc.applyUnknown(f)
		if abs(endPos) < flatEps {
			trade := finalize(acc)
			return nil, trade
		}
		return acc, nil
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
