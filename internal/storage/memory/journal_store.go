package memory

import (
	"context"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// NoteStore is an in-memory implementation of storage.NoteStore.
type NoteStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.TradeNote
}

// NewNoteStore creates a new in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{data: make(map[int64]*domain.TradeNote)}
}

var _ storage.NoteStore = (*NoteStore)(nil)

// Get retrieves a trade's note.
func (s *NoteStore) Get(_ context.Context, tradeID int64) (*domain.TradeNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.data[tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// Put inserts or replaces a trade's note.
func (s *NoteStore) Put(_ context.Context, note *domain.TradeNote) error {
	if note == nil || note.TradeID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *note
	s.data[note.TradeID] = &cp
	return nil
}

// TagStore is an in-memory implementation of storage.TagStore.
type TagStore struct {
	mu   sync.RWMutex
	data map[int64]map[string]struct{}

	// trades resolves trade→wallet for GetByWallet
	trades *TradeStore
}

// NewTagStore creates a new in-memory tag store. The trade store is used to
// resolve wallet ownership for GetByWallet.
func NewTagStore(trades *TradeStore) *TagStore {
	return &TagStore{data: make(map[int64]map[string]struct{}), trades: trades}
}

var _ storage.TagStore = (*TagStore)(nil)

// GetByTrade retrieves a trade's tags, ordered alphabetically.
func (s *TagStore) GetByTrade(_ context.Context, tradeID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []string
	for tag := range s.data[tradeID] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// Add attaches a tag to a trade.
func (s *TagStore) Add(_ context.Context, tradeID int64, tag string) error {
	if tradeID == 0 || tag == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[tradeID] == nil {
		s.data[tradeID] = make(map[string]struct{})
	}
	if _, exists := s.data[tradeID][tag]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[tradeID][tag] = struct{}{}
	return nil
}

// Remove detaches a tag from a trade.
func (s *TagStore) Remove(_ context.Context, tradeID int64, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[tradeID], tag)
	return nil
}

// GetAll retrieves all distinct tags, ordered alphabetically.
func (s *TagStore) GetAll(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, tags := range s.data {
		for tag := range tags {
			seen[tag] = struct{}{}
		}
	}

	var all []string
	for tag := range seen {
		all = append(all, tag)
	}
	sort.Strings(all)
	return all, nil
}

// GetByWallet retrieves the trade→tags mapping for one wallet's trades.
func (s *TagStore) GetByWallet(ctx context.Context, wallet string) (map[int64][]string, error) {
	trades, err := s.trades.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64][]string)
	for _, t := range trades {
		if len(s.data[t.ID]) == 0 {
			continue
		}
		var tags []string
		for tag := range s.data[t.ID] {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		result[t.ID] = tags
	}
	return result, nil
}

// ScreenshotStore is an in-memory implementation of storage.ScreenshotStore.
type ScreenshotStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Screenshot
	nextID int64
}

// NewScreenshotStore creates a new in-memory screenshot store.
func NewScreenshotStore() *ScreenshotStore {
	return &ScreenshotStore{data: make(map[int64]*domain.Screenshot), nextID: 1}
}

var _ storage.ScreenshotStore = (*ScreenshotStore)(nil)

// Insert adds screenshot metadata and assigns its ID.
func (s *ScreenshotStore) Insert(_ context.Context, sc *domain.Screenshot) error {
	if sc == nil || sc.TradeID == 0 || sc.Filename == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sc
	cp.ID = s.nextID
	s.nextID++
	s.data[cp.ID] = &cp
	sc.ID = cp.ID
	return nil
}

// GetByTrade retrieves a trade's screenshots, ordered by upload time ASC.
func (s *ScreenshotStore) GetByTrade(_ context.Context, tradeID int64) ([]*domain.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Screenshot
	for _, sc := range s.data {
		if sc.TradeID == tradeID {
			cp := *sc
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UploadedAt != result[j].UploadedAt {
			return result[i].UploadedAt < result[j].UploadedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByID retrieves one screenshot.
func (s *ScreenshotStore) GetByID(_ context.Context, id int64) (*domain.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

// Delete removes screenshot metadata.
func (s *ScreenshotStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	return nil
}
