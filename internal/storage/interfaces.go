package storage

import (
	"context"

	"hl-journal/internal/domain"
)

// FillStore provides access to the raw fills cache.
type FillStore interface {
	// InsertBulk stores fills, silently skipping any whose TID already
	// exists. Fills are immutable venue facts, so re-ingesting an
	// overlapping page must be a no-op for known rows.
	// Returns the number of newly inserted fills.
	InsertBulk(ctx context.Context, fills []*domain.Fill) (int, error)

	// GetByWallet retrieves all fills for a wallet, ordered by time ASC, tid ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Fill, error)
}

// TradeStore provides access to reconstructed round-trip trades.
type TradeStore interface {
	// ReplaceForWallet atomically swaps the wallet's trade set: existing
	// rows are deleted, the new set inserted. IDs are assigned on insert.
	ReplaceForWallet(ctx context.Context, wallet string, trades []*domain.Trade) error

	// GetByWallet retrieves all trades for a wallet, ordered by open_time ASC, id ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error)

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Trade, error)
}

// NoteStore provides access to per-trade notes.
type NoteStore interface {
	// Get retrieves a trade's note. Returns ErrNotFound if none saved yet.
	Get(ctx context.Context, tradeID int64) (*domain.TradeNote, error)

	// Put inserts or replaces a trade's note.
	Put(ctx context.Context, note *domain.TradeNote) error
}

// TagStore provides access to per-trade tags.
type TagStore interface {
	// GetByTrade retrieves a trade's tags, ordered alphabetically.
	GetByTrade(ctx context.Context, tradeID int64) ([]string, error)

	// Add attaches a tag to a trade. Returns ErrDuplicateKey if already attached.
	Add(ctx context.Context, tradeID int64, tag string) error

	// Remove detaches a tag from a trade. Removing an absent tag is a no-op.
	Remove(ctx context.Context, tradeID int64, tag string) error

	// GetAll retrieves all distinct tags across all trades, ordered alphabetically.
	GetAll(ctx context.Context) ([]string, error)

	// GetByWallet retrieves the trade→tags mapping for one wallet's trades.
	GetByWallet(ctx context.Context, wallet string) (map[int64][]string, error)
}

// ScreenshotStore provides access to per-trade screenshot metadata.
// Image bytes live on disk; the store only tracks filenames.
type ScreenshotStore interface {
	// Insert adds screenshot metadata. The ID is assigned on insert.
	Insert(ctx context.Context, s *domain.Screenshot) error

	// GetByTrade retrieves a trade's screenshots, ordered by upload time ASC.
	GetByTrade(ctx context.Context, tradeID int64) ([]*domain.Screenshot, error)

	// GetByID retrieves one screenshot. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Screenshot, error)

	// Delete removes screenshot metadata. Deleting an absent row is a no-op.
	Delete(ctx context.Context, id int64) error
}

// CalendarStore provides access to daily notes and weekly reviews.
type CalendarStore interface {
	// GetDayNote retrieves a day note. Returns ErrNotFound if none saved.
	GetDayNote(ctx context.Context, dateKey string) (*domain.DayNote, error)

	// PutDayNote inserts or replaces a day note.
	PutDayNote(ctx context.Context, note *domain.DayNote) error

	// GetAllDayNotes retrieves every day note, ordered by date key.
	GetAllDayNotes(ctx context.Context) ([]*domain.DayNote, error)

	// GetWeekNote retrieves a week note. Returns ErrNotFound if none saved.
	GetWeekNote(ctx context.Context, weekKey string) (*domain.WeekNote, error)

	// PutWeekNote inserts or replaces a week note.
	PutWeekNote(ctx context.Context, note *domain.WeekNote) error

	// GetAllWeekNotes retrieves every week note, ordered by week key.
	GetAllWeekNotes(ctx context.Context) ([]*domain.WeekNote, error)
}

// CandleStore caches fetched OHLC buckets so repeated enrichment runs and
// chart requests don't hammer the venue.
type CandleStore interface {
	// InsertBulk stores candles, skipping any whose (coin, interval,
	// open_time) bucket already exists. Returns the number inserted.
	InsertBulk(ctx context.Context, candles []*domain.Candle) (int, error)

	// GetByTimeRange retrieves cached candles for a coin and interval whose
	// open time falls within [start, end], ordered by open time ASC.
	GetByTimeRange(ctx context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error)
}
