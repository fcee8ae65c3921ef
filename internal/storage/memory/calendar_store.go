package memory

import (
	"context"
	"sort"
	"sync"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// CalendarStore is an in-memory implementation of storage.CalendarStore.
type CalendarStore struct {
	mu    sync.RWMutex
	days  map[string]*domain.DayNote
	weeks map[string]*domain.WeekNote
}

// NewCalendarStore creates a new in-memory calendar store.
func NewCalendarStore() *CalendarStore {
	return &CalendarStore{
		days:  make(map[string]*domain.DayNote),
		weeks: make(map[string]*domain.WeekNote),
	}
}

var _ storage.CalendarStore = (*CalendarStore)(nil)

// GetDayNote retrieves a day note.
func (s *CalendarStore) GetDayNote(_ context.Context, dateKey string) (*domain.DayNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.days[dateKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// PutDayNote inserts or replaces a day note.
func (s *CalendarStore) PutDayNote(_ context.Context, note *domain.DayNote) error {
	if note == nil || note.DateKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *note
	s.days[note.DateKey] = &cp
	return nil
}

// GetAllDayNotes retrieves every day note, ordered by date key.
func (s *CalendarStore) GetAllDayNotes(_ context.Context) ([]*domain.DayNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DayNote
	for _, n := range s.days {
		cp := *n
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DateKey < result[j].DateKey })
	return result, nil
}

// GetWeekNote retrieves a week note.
func (s *CalendarStore) GetWeekNote(_ context.Context, weekKey string) (*domain.WeekNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.weeks[weekKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// PutWeekNote inserts or replaces a week note.
func (s *CalendarStore) PutWeekNote(_ context.Context, note *domain.WeekNote) error {
	if note == nil || note.WeekKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *note
	s.weeks[note.WeekKey] = &cp
	return nil
}

// GetAllWeekNotes retrieves every week note, ordered by week key.
func (s *CalendarStore) GetAllWeekNotes(_ context.Context) ([]*domain.WeekNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WeekNote
	for _, n := range s.weeks {
		cp := *n
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekKey < result[j].WeekKey })
	return result, nil
}
