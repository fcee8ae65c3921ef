package journal

import (
	"sort"

	"hl-journal/internal/domain"
)

// BuildTrades groups a wallet's fills into round-trip trades.
//
// Fills may arrive in any order; they are stable-sorted by timestamp and
// partitioned per coin, then each coin's sequence is folded through the
// position state machine. Accumulators still open at the end of input are
// discarded; unclosed positions are never reported as trades.
//
// The result is sorted by open time ascending, ties broken by coin, so
// identical input fill sets produce byte-identical output in any input order.
func BuildTrades(fills []*domain.Fill) []*domain.Trade {
	sorted := SortFills(fills)
	byCoin, coins := GroupByCoin(sorted)

	// Coins are walked in lexical order; the final sort is stable, so trades
	// sharing an open time keep a deterministic relative order.
	sort.Strings(coins)

	var trades []*domain.Trade
	for _, coin := range coins {
		trades = append(trades, processCoin(byCoin[coin])...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].OpenTime < trades[j].OpenTime
	})
	return trades
}

// processCoin folds one coin's chronological fill sequence through the state
// machine, holding at most one live accumulator.
func processCoin(fills []*domain.Fill) []*domain.Trade {
	var trades []*domain.Trade
	var acc *accumulator

	for _, f := range fills {
		var trade *domain.Trade
		acc, trade = applyFill(acc, f)
		if trade != nil {
			trades = append(trades, trade)
		}
	}

	return trades
}
