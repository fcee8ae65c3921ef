package postgres

import (
	"context"
	"fmt"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// NoteStore implements storage.NoteStore using PostgreSQL.
type NoteStore struct {
	pool *Pool
}

// NewNoteStore creates a new NoteStore.
func NewNoteStore(pool *Pool) *NoteStore {
	return &NoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NoteStore = (*NoteStore)(nil)

// Get retrieves a trade's note. Returns ErrNotFound if none saved yet.
func (s *NoteStore) Get(ctx context.Context, tradeID int64) (*domain.TradeNote, error) {
	query := `
		SELECT trade_id, notes, updated_at
		FROM trade_notes
		WHERE trade_id = $1
	`

	var n domain.TradeNote
	err := s.pool.QueryRow(ctx, query, tradeID).Scan(&n.TradeID, &n.Notes, &n.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade note: %w", err)
	}
	return &n, nil
}

// Put inserts or replaces a trade's note.
func (s *NoteStore) Put(ctx context.Context, note *domain.TradeNote) error {
	if note == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_notes (trade_id, notes, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (trade_id) DO UPDATE
		SET notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, note.TradeID, note.Notes, note.UpdatedAt); err != nil {
		return fmt.Errorf("put trade note: %w", err)
	}
	return nil
}

// TagStore implements storage.TagStore using PostgreSQL.
type TagStore struct {
	pool *Pool
}

// NewTagStore creates a new TagStore.
func NewTagStore(pool *Pool) *TagStore {
	return &TagStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TagStore = (*TagStore)(nil)

// GetByTrade retrieves a trade's tags, ordered alphabetically.
func (s *TagStore) GetByTrade(ctx context.Context, tradeID int64) ([]string, error) {
	query := `
		SELECT tag FROM trade_tags
		WHERE trade_id = $1
		ORDER BY tag ASC
	`

	rows, err := s.pool.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("get tags by trade: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}
	return tags, nil
}

// Add attaches a tag to a trade. Returns ErrDuplicateKey if already attached.
func (s *TagStore) Add(ctx context.Context, tradeID int64, tag string) error {
	if tag == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO trade_tags (trade_id, tag) VALUES ($1, $2)`

	if _, err := s.pool.Exec(ctx, query, tradeID, tag); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("add tag: %w", err)
	}
	return nil
}

// Remove detaches a tag from a trade. Removing an absent tag is a no-op.
func (s *TagStore) Remove(ctx context.Context, tradeID int64, tag string) error {
	query := `DELETE FROM trade_tags WHERE trade_id = $1 AND tag = $2`

	if _, err := s.pool.Exec(ctx, query, tradeID, tag); err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

// GetAll retrieves all distinct tags, ordered alphabetically.
func (s *TagStore) GetAll(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT tag FROM trade_tags ORDER BY tag ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}
	return tags, nil
}

// GetByWallet retrieves the trade to tags mapping for one wallet's trades.
func (s *TagStore) GetByWallet(ctx context.Context, wallet string) (map[int64][]string, error) {
	query := `
		SELECT tt.trade_id, tt.tag
		FROM trade_tags tt
		JOIN trades t ON t.id = tt.trade_id
		WHERE t.wallet = $1
		ORDER BY tt.trade_id ASC, tt.tag ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get tags by wallet: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]string)
	for rows.Next() {
		var tradeID int64
		var tag string
		if err := rows.Scan(&tradeID, &tag); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		result[tradeID] = append(result[tradeID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}
	return result, nil
}

// ScreenshotStore implements storage.ScreenshotStore using PostgreSQL.
type ScreenshotStore struct {
	pool *Pool
}

// NewScreenshotStore creates a new ScreenshotStore.
func NewScreenshotStore(pool *Pool) *ScreenshotStore {
	return &ScreenshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScreenshotStore = (*ScreenshotStore)(nil)

// Insert adds screenshot metadata. The ID is assigned on insert.
func (s *ScreenshotStore) Insert(ctx context.Context, sc *domain.Screenshot) error {
	if sc == nil || sc.Filename == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_screenshots (trade_id, filename, original_name, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query, sc.TradeID, sc.Filename, sc.OriginalName, sc.UploadedAt).Scan(&sc.ID)
	if err != nil {
		return fmt.Errorf("insert screenshot: %w", err)
	}
	return nil
}

// GetByTrade retrieves a trade's screenshots, ordered by upload time ASC.
func (s *ScreenshotStore) GetByTrade(ctx context.Context, tradeID int64) ([]*domain.Screenshot, error) {
	query := `
		SELECT id, trade_id, filename, original_name, uploaded_at
		FROM trade_screenshots
		WHERE trade_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("get screenshots by trade: %w", err)
	}
	defer rows.Close()

	var shots []*domain.Screenshot
	for rows.Next() {
		var sc domain.Screenshot
		if err := rows.Scan(&sc.ID, &sc.TradeID, &sc.Filename, &sc.OriginalName, &sc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan screenshot row: %w", err)
		}
		shots = append(shots, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshot rows: %w", err)
	}
	return shots, nil
}

// GetByID retrieves one screenshot. Returns ErrNotFound if not exists.
func (s *ScreenshotStore) GetByID(ctx context.Context, id int64) (*domain.Screenshot, error) {
	query := `
		SELECT id, trade_id, filename, original_name, uploaded_at
		FROM trade_screenshots
		WHERE id = $1
	`

	var sc domain.Screenshot
	err := s.pool.QueryRow(ctx, query, id).Scan(&sc.ID, &sc.TradeID, &sc.Filename, &sc.OriginalName, &sc.UploadedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get screenshot by id: %w", err)
	}
	return &sc, nil
}

// Delete removes screenshot metadata. Deleting an absent row is a no-op.
func (s *ScreenshotStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trade_screenshots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete screenshot: %w", err)
	}
	return nil
}
