package journal

import (
	"context"
	"io"
	"log"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/observability"
)

// CandleSource provides OHLC data for excursion enrichment. Any
// implementation (live client, cached, stub) is interchangeable; the
// enricher only reads OpenTime, High and Low.
type CandleSource interface {
	FetchCandles(ctx context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error)
}

const (
	// enrichInterval is the candle granularity used for excursion refinement.
	enrichInterval = "1m"
	enrichBucketMs = 60_000

	// enrichWorkers bounds concurrent per-coin fetches.
	enrichWorkers = 4
)

// EnrichTrades refines each trade's MAE/MFE from true market extremes instead
// of only the prices the account itself traded at.
//
// One fetch is issued per coin, covering the minimal window spanning all of
// that coin's trades. Coins are processed by a bounded worker pool; workers
// never share trades, so no locking is needed. Enrichment is strictly
// best-effort: a failed or empty fetch leaves that coin's trades with their
// fills-based excursion values and never fails the batch.
func EnrichTrades(ctx context.Context, trades []*domain.Trade, source CandleSource, logger *log.Logger) {
	if len(trades) == 0 || source == nil {
		return
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	byCoin := make(map[string][]*domain.Trade)
	for _, t := range trades {
		byCoin[t.Coin] = append(byCoin[t.Coin], t)
	}

	coinCh := make(chan string, len(byCoin))
	for coin := range byCoin {
		coinCh <- coin
	}
	close(coinCh)

	workers := enrichWorkers
	if len(byCoin) < workers {
		workers = len(byCoin)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for coin := range coinCh {
				enrichCoin(ctx, coin, byCoin[coin], source, logger)
			}
		}()
	}
	wg.Wait()
}

// enrichCoin fetches candles for one coin's full trade window and rewrites
// each trade's excursions from overlapping candle extremes.
func enrichCoin(ctx context.Context, coin string, trades []*domain.Trade, source CandleSource, logger *log.Logger) {
	start, end := trades[0].OpenTime, trades[0].CloseTime
	for _, t := range trades[1:] {
		if t.OpenTime < start {
			start = t.OpenTime
		}
		if t.CloseTime > end {
			end = t.CloseTime
		}
	}

	candles, err := source.FetchCandles(ctx, coin, enrichInterval, start, end)
	if err != nil {
		observability.DefaultMetrics.EnrichmentErrors.Inc()
		logger.Printf("candle fetch failed for %s, keeping fills-based excursions: %v", coin, err)
		return
	}
	if len(candles) == 0 {
		return
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime < candles[j].OpenTime
	})

	enriched := 0
	for _, t := range trades {
		low, high, found := scanExtremes(candles, t.OpenTime, t.CloseTime)
		if !found || t.EntryPx <= 0 {
			continue
		}
		maePx, mfePx := low, high
		if !t.IsLong() {
			maePx, mfePx = high, low
		}
		t.MAE = round6(abs(maePx-t.EntryPx) / t.EntryPx)
		t.MFE = round6(abs(mfePx-t.EntryPx) / t.EntryPx)
		enriched++
	}
	observability.DefaultMetrics.TradesEnriched.Add(float64(enriched))
}

// scanExtremes walks sorted minute candles and returns the min low / max high
// over those overlapping [openTime, closeTime]. A candle starting at t covers
// [t, t+60000): it overlaps when its end exceeds the trade's open time and
// its start does not exceed the trade's close time.
func scanExtremes(candles []*domain.Candle, openTime, closeTime int64) (low, high float64, found bool) {
	for _, c := range candles {
		if c.OpenTime > closeTime {
			break
		}
		if c.OpenTime+enrichBucketMs <= openTime {
			continue
		}
		if !found {
			low, high = c.Low, c.High
			found = true
			continue
		}
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high, found
}
