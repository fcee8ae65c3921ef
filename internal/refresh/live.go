package refresh

import (
	"context"

	"hl-journal/internal/hyperliquid"
	"hl-journal/internal/journal"
	"hl-journal/internal/observability"
)

// RunLive consumes a wallet's live fill stream and keeps its journal
// current. Snapshot batches are absorbed by the fill store's tid dedup;
// any batch that stores at least one new fill triggers a trade rebuild
// from the cached history. Blocks until ctx is done or the stream closes.
func (s *Service) RunLive(ctx context.Context, wallet string, events <-chan hyperliquid.FillEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.applyLive(ctx, wallet, ev); err != nil {
				s.logger.Printf("live update for %s failed: %v", wallet, err)
			}
		}
	}
}

func (s *Service) applyLive(ctx context.Context, wallet string, ev hyperliquid.FillEvent) error {
	if len(ev.Fills) == 0 {
		return nil
	}
	observability.DefaultMetrics.LiveFillsSeen.Add(float64(len(ev.Fills)))

	stored, err := s.fills.InsertBulk(ctx, ev.Fills)
	if err != nil {
		return err
	}
	if stored == 0 {
		// snapshot replay or duplicate delivery
		return nil
	}
	observability.RecordFillsStored(stored)
	s.logger.Printf("live: %d new fills for %s, rebuilding trades", stored, wallet)

	history, err := s.fills.GetByWallet(ctx, wallet)
	if err != nil {
		return err
	}

	trades := journal.BuildTrades(history)
	for _, t := range trades {
		t.Wallet = wallet
	}
	if s.candles != nil {
		journal.EnrichTrades(ctx, trades, s.candles, s.logger)
	}
	return s.trades.ReplaceForWallet(ctx, wallet, trades)
}
