// Package journal reconstructs round-trip trades from raw Hyperliquid fills.
//
// The venue's `dir` tag ("Open Long", "Close Short", ...) identifies position
// opens and closes directly; the engine trusts it, plus the per-fill
// startPosition snapshot, instead of recomputing lot matching locally.
package journal

import (
	"sort"

	"hl-journal/internal/domain"
)

// SortFills returns the fills in non-decreasing timestamp order.
// The sort is stable: fills sharing a timestamp keep their input order,
// which makes the whole engine deterministic for any input permutation
// that preserves relative order of equal-time fills.
func SortFills(fills []*domain.Fill) []*domain.Fill {
	sorted := make([]*domain.Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	return sorted
}

// GroupByCoin partitions time-sorted fills into per-coin sequences.
// Each sequence preserves the chronological order of its fills. Returns the
// mapping plus the coin keys in first-seen order so callers can iterate
// deterministically.
func GroupByCoin(sorted []*domain.Fill) (map[string][]*domain.Fill, []string) {
	byCoin := make(map[string][]*domain.Fill)
	var coins []string

	for _, f := range sorted {
		if _, seen := byCoin[f.Coin]; !seen {
			coins = append(coins, f.Coin)
		}
		byCoin[f.Coin] = append(byCoin[f.Coin], f)
	}

	return byCoin, coins
}
