package domain

import "strings"

// Fill represents one executed unit of a trade on Hyperliquid.
// Corresponds to the fills table in PostgreSQL. Numeric fields arrive as
// strings on the wire and are converted at the client boundary.
type Fill struct {
	TID           int64   // venue trade identifier (falls back to OID if absent)
	OID           int64   // originating order identifier
	Coin          string  // instrument symbol
	Px            float64 // execution price
	Sz            float64 // executed size (non-negative)
	Side          string  // "B" (buy) | "A" (ask/sell)
	Dir           string  // venue direction tag, e.g. "Open Long", "Close Short"
	Time          int64   // execution timestamp (ms epoch, not unique)
	StartPosition float64 // signed position size before this fill, venue-authoritative
	ClosedPnl     float64 // realized pnl delta attributed to this fill
	Fee           float64 // fee charged for this fill
	Hash          string  // on-chain tx hash (optional)
	Crossed       bool    // taker flag
	Wallet        string  // owning account address
}

// Fill side constants
const (
	SideBuy  = "B"
	SideSell = "A"
)

// Direction classifies a fill's venue direction tag.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionOpen
	DirectionClose
)

// ParseDirection classifies a raw `dir` tag by prefix match.
// Tags are free text; anything that is not "Open..." or "Close..." is Unknown.
func ParseDirection(dir string) Direction {
	switch {
	case strings.HasPrefix(dir, "Open"):
		return DirectionOpen
	case strings.HasPrefix(dir, "Close"):
		return DirectionClose
	default:
		return DirectionUnknown
	}
}

// SignedSize returns the fill size signed by side (positive for buys).
func (f *Fill) SignedSize() float64 {
	if f.Side == SideBuy {
		return f.Sz
	}
	return -f.Sz
}

// EndPosition returns the position after this fill, computed from the
// venue-supplied starting position. The snapshot is trusted over any locally
// tracked running total.
func (f *Fill) EndPosition() float64 {
	return f.StartPosition + f.SignedSize()
}
