package postgres

import (
	"context"
	"fmt"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// CalendarStore implements storage.CalendarStore using PostgreSQL.
type CalendarStore struct {
	pool *Pool
}

// NewCalendarStore creates a new CalendarStore.
func NewCalendarStore(pool *Pool) *CalendarStore {
	return &CalendarStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CalendarStore = (*CalendarStore)(nil)

// GetDayNote retrieves a day note. Returns ErrNotFound if none saved.
func (s *CalendarStore) GetDayNote(ctx context.Context, dateKey string) (*domain.DayNote, error) {
	query := `
		SELECT date_key, notes, updated_at
		FROM calendar_notes
		WHERE date_key = $1
	`

	var n domain.DayNote
	err := s.pool.QueryRow(ctx, query, dateKey).Scan(&n.DateKey, &n.Notes, &n.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get day note: %w", err)
	}
	return &n, nil
}

// PutDayNote inserts or replaces a day note.
func (s *CalendarStore) PutDayNote(ctx context.Context, note *domain.DayNote) error {
	if note == nil || note.DateKey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO calendar_notes (date_key, notes, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (date_key) DO UPDATE
		SET notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, note.DateKey, note.Notes, note.UpdatedAt); err != nil {
		return fmt.Errorf("put day note: %w", err)
	}
	return nil
}

// GetAllDayNotes retrieves every day note, ordered by date key.
func (s *CalendarStore) GetAllDayNotes(ctx context.Context) ([]*domain.DayNote, error) {
	query := `
		SELECT date_key, notes, updated_at
		FROM calendar_notes
		ORDER BY date_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all day notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.DayNote
	for rows.Next() {
		var n domain.DayNote
		if err := rows.Scan(&n.DateKey, &n.Notes, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan day note row: %w", err)
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day note rows: %w", err)
	}
	return notes, nil
}

// GetWeekNote retrieves a week note. Returns ErrNotFound if none saved.
func (s *CalendarStore) GetWeekNote(ctx context.Context, weekKey string) (*domain.WeekNote, error) {
	query := `
		SELECT week_key, review, well, improve, updated_at
		FROM week_notes
		WHERE week_key = $1
	`

	var n domain.WeekNote
	err := s.pool.QueryRow(ctx, query, weekKey).Scan(&n.WeekKey, &n.Review, &n.Well, &n.Improve, &n.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get week note: %w", err)
	}
	return &n, nil
}

// PutWeekNote inserts or replaces a week note.
func (s *CalendarStore) PutWeekNote(ctx context.Context, note *domain.WeekNote) error {
	if note == nil || note.WeekKey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO week_notes (week_key, review, well, improve, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (week_key) DO UPDATE
		SET review = EXCLUDED.review, well = EXCLUDED.well,
		    improve = EXCLUDED.improve, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, note.WeekKey, note.Review, note.Well, note.Improve, note.UpdatedAt); err != nil {
		return fmt.Errorf("put week note: %w", err)
	}
	return nil
}

// GetAllWeekNotes retrieves every week note, ordered by week key.
func (s *CalendarStore) GetAllWeekNotes(ctx context.Context) ([]*domain.WeekNote, error) {
	query := `
		SELECT week_key, review, well, improve, updated_at
		FROM week_notes
		ORDER BY week_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all week notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.WeekNote
	for rows.Next() {
		var n domain.WeekNote
		if err := rows.Scan(&n.WeekKey, &n.Review, &n.Well, &n.Improve, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan week note row: %w", err)
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate week note rows: %w", err)
	}
	return notes, nil
}
