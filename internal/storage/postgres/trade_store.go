package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// ReplaceForWallet atomically swaps the wallet's trade set. Runs in a single
// transaction so readers never observe a half-replaced set. IDs are written
// back into the input trades.
func (s *TradeStore) ReplaceForWallet(ctx context.Context, wallet string, trades []*domain.Trade) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace trades: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trades WHERE wallet = $1`, wallet); err != nil {
		return fmt.Errorf("delete old trades: %w", err)
	}

	query := `
		INSERT INTO trades (
			wallet, coin, side, entry_px, exit_px, size, pnl, fees,
			open_time, close_time, hold_ms, mae, mfe, fill_ids, orphan
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	for _, t := range trades {
		if t == nil || t.Coin == "" {
			return storage.ErrInvalidInput
		}
		err := tx.QueryRow(ctx, query,
			wallet,
			t.Coin,
			t.Side,
			t.EntryPx,
			t.ExitPx,
			t.Size,
			t.Pnl,
			t.Fees,
			t.OpenTime,
			t.CloseTime,
			t.HoldMs,
			t.MAE,
			t.MFE,
			t.FillIDs,
			t.Orphan,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		t.Wallet = wallet
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace trades: %w", err)
	}
	return nil
}

// GetByWallet retrieves all trades for a wallet, ordered by open_time ASC, id ASC.
func (s *TradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	query := `
		SELECT id, wallet, coin, side, entry_px, exit_px, size, pnl, fees,
		       open_time, close_time, hold_ms, mae, mfe, fill_ids, orphan
		FROM trades
		WHERE wallet = $1
		ORDER BY open_time ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	query := `
		SELECT id, wallet, coin, side, entry_px, exit_px, size, pnl, fees,
		       open_time, close_time, hold_ms, mae, mfe, fill_ids, orphan
		FROM trades
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.ID,
		&t.Wallet,
		&t.Coin,
		&t.Side,
		&t.EntryPx,
		&t.ExitPx,
		&t.Size,
		&t.Pnl,
		&t.Fees,
		&t.OpenTime,
		&t.CloseTime,
		&t.HoldMs,
		&t.MAE,
		&t.MFE,
		&t.FillIDs,
		&t.Orphan,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
