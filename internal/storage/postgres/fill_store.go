package postgres

import (
	"context"
	"fmt"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// FillStore implements storage.FillStore using PostgreSQL.
type FillStore struct {
	pool *Pool
}

// NewFillStore creates a new FillStore.
func NewFillStore(pool *Pool) *FillStore {
	return &FillStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FillStore = (*FillStore)(nil)

// InsertBulk stores fills, skipping rows whose tid already exists.
// Returns the number of newly inserted fills.
func (s *FillStore) InsertBulk(ctx context.Context, fills []*domain.Fill) (int, error) {
	if len(fills) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO fills (
			tid, oid, wallet, coin, px, sz, side, dir, time,
			start_position, closed_pnl, fee, hash, crossed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (tid) DO NOTHING
	`

	inserted := 0
	for _, f := range fills {
		if f == nil || f.Wallet == "" || f.Coin == "" {
			return inserted, storage.ErrInvalidInput
		}
		tag, err := s.pool.Exec(ctx, query,
			f.TID,
			f.OID,
			f.Wallet,
			f.Coin,
			f.Px,
			f.Sz,
			f.Side,
			f.Dir,
			f.Time,
			f.StartPosition,
			f.ClosedPnl,
			f.Fee,
			f.Hash,
			f.Crossed,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert fill %d: %w", f.TID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetByWallet retrieves all fills for a wallet, ordered by time ASC, tid ASC.
func (s *FillStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Fill, error) {
	query := `
		SELECT tid, oid, wallet, coin, px, sz, side, dir, time,
		       start_position, closed_pnl, fee, hash, crossed
		FROM fills
		WHERE wallet = $1
		ORDER BY time ASC, tid ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get fills by wallet: %w", err)
	}
	defer rows.Close()

	var fills []*domain.Fill
	for rows.Next() {
		var f domain.Fill
		err := rows.Scan(
			&f.TID,
			&f.OID,
			&f.Wallet,
			&f.Coin,
			&f.Px,
			&f.Sz,
			&f.Side,
			&f.Dir,
			&f.Time,
			&f.StartPosition,
			&f.ClosedPnl,
			&f.Fee,
			&f.Hash,
			&f.Crossed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fill row: %w", err)
		}
		fills = append(fills, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fill rows: %w", err)
	}

	return fills, nil
}
