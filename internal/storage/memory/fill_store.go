// Package memory provides in-memory storage implementations, used by tests
// and by --use-memory mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// FillStore is an in-memory implementation of storage.FillStore.
type FillStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Fill // keyed by TID
}

// NewFillStore creates a new in-memory fill store.
func NewFillStore() *FillStore {
	return &FillStore{data: make(map[int64]*domain.Fill)}
}

var _ storage.FillStore = (*FillStore)(nil)

// InsertBulk stores fills, skipping any whose TID already exists.
func (s *FillStore) InsertBulk(_ context.Context, fills []*domain.Fill) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, f := range fills {
		if f == nil || f.TID == 0 {
			return inserted, storage.ErrInvalidInput
		}
		if _, exists := s.data[f.TID]; exists {
			continue
		}
		cp := *f
		s.data[f.TID] = &cp
		inserted++
	}
	return inserted, nil
}

// GetByWallet retrieves all fills for a wallet, ordered by time ASC, tid ASC.
func (s *FillStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Fill
	for _, f := range s.data {
		if f.Wallet == wallet {
			cp := *f
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Time != result[j].Time {
			return result[i].Time < result[j].Time
		}
		return result[i].TID < result[j].TID
	})

	return result, nil
}
