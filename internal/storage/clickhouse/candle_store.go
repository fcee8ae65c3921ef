package clickhouse

import (
	"context"
	"fmt"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk stores candles, skipping buckets already present.
// Returns the number of newly inserted candles.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	// Filter out buckets that already exist so the count reflects new rows.
	// ReplacingMergeTree would absorb duplicates eventually, but counting
	// matters to callers tracking cache growth.
	var fresh []*domain.Candle
	for _, c := range candles {
		if c == nil || c.Coin == "" || c.Interval == "" {
			return 0, storage.ErrInvalidInput
		}
		exists, err := s.exists(ctx, c.Coin, c.Interval, c.OpenTime)
		if err != nil {
			return 0, fmt.Errorf("check exists: %w", err)
		}
		if !exists {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			coin, interval, open_time, open, high, low, close, volume
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range fresh {
		err = batch.Append(
			c.Coin, c.Interval, uint64(c.OpenTime),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return 0, fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}

	return len(fresh), nil
}

// GetByTimeRange retrieves cached candles with open time in [start, end],
// ordered by open time ASC.
func (s *CandleStore) GetByTimeRange(ctx context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error) {
	query := `
		SELECT coin, interval, open_time, open, high, low, close, volume
		FROM candles
		WHERE coin = ? AND interval = ? AND open_time >= ? AND open_time <= ?
		ORDER BY open_time ASC
	`

	rows, err := s.conn.Query(ctx, query, coin, interval, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query candles by time range: %w", err)
	}
	defer rows.Close()

	var candles []*domain.Candle
	for rows.Next() {
		var c domain.Candle
		var openTime uint64

		err := rows.Scan(
			&c.Coin, &c.Interval, &openTime,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.OpenTime = int64(openTime)
		candles = append(candles, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}

// exists checks if a candle bucket is already cached.
func (s *CandleStore) exists(ctx context.Context, coin, interval string, openTime int64) (bool, error) {
	query := `
		SELECT count(*) FROM candles
		WHERE coin = ? AND interval = ? AND open_time = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, coin, interval, uint64(openTime)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
