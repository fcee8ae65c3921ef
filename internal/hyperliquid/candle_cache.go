package hyperliquid

import (
	"context"
	"fmt"
	"io"
	"log"

	"hl-journal/internal/domain"
	"hl-journal/internal/journal"
	"hl-journal/internal/observability"
	"hl-journal/internal/storage"
)

// CachedCandleSource is a read-through cache in front of a candle fetcher.
// Candles for closed time ranges never change, so a fully covered range is
// served from the store without touching the venue.
type CachedCandleSource struct {
	source journal.CandleSource
	store  storage.CandleStore
	logger *log.Logger
}

// NewCachedCandleSource wraps source with the given cache store.
func NewCachedCandleSource(source journal.CandleSource, store storage.CandleStore, logger *log.Logger) *CachedCandleSource {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CachedCandleSource{source: source, store: store, logger: logger}
}

// Compile-time interface check.
var _ journal.CandleSource = (*CachedCandleSource)(nil)

// FetchCandles returns cached candles when the store fully covers the
// aligned range, otherwise fetches from the venue and backfills the cache.
func (s *CachedCandleSource) FetchCandles(ctx context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error) {
	bucketMs := domain.CandleIntervalMs(interval)
	if bucketMs > 0 {
		// Align to bucket boundaries so coverage counting is exact.
		alignedStart := start - start%bucketMs
		expected := (end-alignedStart)/bucketMs + 1

		cached, err := s.store.GetByTimeRange(ctx, coin, interval, alignedStart, end)
		if err != nil {
			return nil, fmt.Errorf("read candle cache: %w", err)
		}
		if int64(len(cached)) >= expected {
			return cached, nil
		}
	}

	candles, err := s.source.FetchCandles(ctx, coin, interval, start, end)
	if err != nil {
		return nil, err
	}

	if len(candles) > 0 {
		n, err := s.store.InsertBulk(ctx, candles)
		if err != nil {
			// A cache write failure must not fail the read path.
			s.logger.Printf("candle cache write failed for %s %s: %v", coin, interval, err)
		} else if n > 0 {
			observability.DefaultMetrics.CandleCacheWrites.Add(float64(n))
			s.logger.Printf("cached %d new %s candles for %s", n, interval, coin)
		}
	}

	return candles, nil
}
