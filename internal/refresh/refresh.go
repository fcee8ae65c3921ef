// Package refresh rebuilds a wallet's trade journal from venue fill history.
package refresh

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"hl-journal/internal/domain"
	"hl-journal/internal/journal"
	"hl-journal/internal/observability"
	"hl-journal/internal/storage"
)

// FillSource fetches fill history from the venue.
type FillSource interface {
	FetchAllFills(ctx context.Context, wallet string) ([]*domain.Fill, error)
}

// Service wires the fetch, aggregation, and persistence steps of a refresh.
// A refresh is a full rebuild: the venue's fill history is the source of
// truth and the stored trade set is replaced wholesale.
type Service struct {
	source FillSource
	fills  storage.FillStore
	trades storage.TradeStore

	// candles is optional; when nil, trades keep fill-derived excursions.
	candles journal.CandleSource

	logger *log.Logger
}

// NewService creates a refresh service. candles may be nil to skip
// candle enrichment.
func NewService(source FillSource, fills storage.FillStore, trades storage.TradeStore, candles journal.CandleSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		source:  source,
		fills:   fills,
		trades:  trades,
		candles: candles,
		logger:  logger,
	}
}

// Refresh re-fetches the wallet's full fill history, rebuilds its trades,
// and returns the stored trade set with assigned IDs.
func (s *Service) Refresh(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	started := time.Now()

	trades, err := s.refresh(ctx, wallet)
	if err != nil {
		observability.RecordRefreshRun("error", time.Since(started).Seconds())
		return nil, err
	}

	observability.RecordRefreshRun("ok", time.Since(started).Seconds())
	observability.DefaultMetrics.TradesBuilt.Set(float64(len(trades)))
	observability.DefaultMetrics.LastSuccessfulRefresh.SetToCurrentTime()
	return trades, nil
}

func (s *Service) refresh(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	s.logger.Printf("fetching all fills for %s", wallet)
	fills, err := s.source.FetchAllFills(ctx, wallet)
	if err != nil {
		observability.RecordFetchError("fills")
		return nil, fmt.Errorf("fetch fills: %w", err)
	}
	observability.RecordFillsFetched(len(fills))
	if len(fills) == 0 {
		s.logger.Printf("no fills for %s", wallet)
		if err := s.trades.ReplaceForWallet(ctx, wallet, nil); err != nil {
			return nil, fmt.Errorf("clear trades: %w", err)
		}
		return nil, nil
	}

	stored, err := s.fills.InsertBulk(ctx, fills)
	if err != nil {
		return nil, fmt.Errorf("cache fills: %w", err)
	}
	observability.RecordFillsStored(stored)
	s.logger.Printf("got %d fills (%d new), processing", len(fills), stored)

	trades := journal.BuildTrades(fills)
	for _, t := range trades {
		t.Wallet = wallet
	}
	s.logger.Printf("built %d round-trip trades", len(trades))

	if s.candles != nil {
		journal.EnrichTrades(ctx, trades, s.candles, s.logger)
	}

	if err := s.trades.ReplaceForWallet(ctx, wallet, trades); err != nil {
		return nil, fmt.Errorf("store trades: %w", err)
	}

	return trades, nil
}

// EnsureTrades returns the wallet's cached trades, refreshing first only
// when the cache is empty.
func (s *Service) EnsureTrades(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	cached, err := s.trades.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load cached trades: %w", err)
	}
	if len(cached) > 0 {
		return cached, nil
	}
	return s.Refresh(ctx, wallet)
}
