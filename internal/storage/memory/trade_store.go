package memory

import (
	"context"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Trade
	nextID int64
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{data: make(map[int64]*domain.Trade), nextID: 1}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// ReplaceForWallet atomically swaps the wallet's trade set.
func (s *TradeStore) ReplaceForWallet(_ context.Context, wallet string, trades []*domain.Trade) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.data {
		if t.Wallet == wallet {
			delete(s.data, id)
		}
	}

	for _, t := range trades {
		cp := *t
		cp.ID = s.nextID
		cp.Wallet = wallet
		s.nextID++
		s.data[cp.ID] = &cp
		t.ID = cp.ID
	}

	return nil
}

// GetByWallet retrieves all trades for a wallet, ordered by open_time ASC, id ASC.
func (s *TradeStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Wallet == wallet {
			cp := *t
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].OpenTime != result[j].OpenTime {
			return result[i].OpenTime < result[j].OpenTime
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByID retrieves a trade by its ID.
func (s *TradeStore) GetByID(_ context.Context, id int64) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}
