package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Candle // keyed by (coin, interval, open_time)
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{data: make(map[string]*domain.Candle)}
}

var _ storage.CandleStore = (*CandleStore)(nil)

func candleKey(coin, interval string, openTime int64) string {
	return fmt.Sprintf("%s|%s|%d", coin, interval, openTime)
}

// InsertBulk stores candles, skipping buckets that already exist.
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, c := range candles {
		if c == nil || c.Coin == "" || c.Interval == "" {
			return inserted, storage.ErrInvalidInput
		}
		key := candleKey(c.Coin, c.Interval, c.OpenTime)
		if _, exists := s.data[key]; exists {
			continue
		}
		cp := *c
		s.data[key] = &cp
		inserted++
	}
	return inserted, nil
}

// GetByTimeRange retrieves cached candles with open time in [start, end].
func (s *CandleStore) GetByTimeRange(_ context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for _, c := range s.data {
		if c.Coin == coin && c.Interval == interval && c.OpenTime >= start && c.OpenTime <= end {
			cp := *c
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].OpenTime < result[j].OpenTime })
	return result, nil
}
