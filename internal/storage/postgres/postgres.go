// Package postgres persists the journal's relational data: the immutable
// fill cache, reconstructed round-trip trades, and the trader's annotations
// (notes, tags, screenshots, calendar entries).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The workload is one trader's journal: short API reads plus a single bulk
// writer during a refresh. A handful of connections covers it, and idle
// ones can be released quickly between sessions.
const (
	maxPoolConns    = 8
	maxConnIdleTime = 5 * time.Minute
)

// Pool wraps pgxpool.Pool so every store shares one set of connections.
type Pool struct {
	*pgxpool.Pool
}

// poolConfig parses the DSN and sizes the pool for the journal's
// read-heavy pattern. A DSN can still demand a bigger pool explicitly via
// pool_max_conns; only the driver default is capped.
func poolConfig(dsn string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if config.MaxConns > maxPoolConns && !strings.Contains(dsn, "pool_max_conns") {
		config.MaxConns = maxPoolConns
	}
	config.MaxConnIdleTime = maxConnIdleTime
	return config, nil
}

// NewPool connects to PostgreSQL and verifies the connection with a ping.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// unique_violation; raised by the fills tid primary key and the
// (trade_id, tag) pair when a row already exists.
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique constraint
// violation. The fill cache leans on this for tid dedup and the tag store
// maps it to storage.ErrDuplicateKey.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError reports an empty single-row lookup, mapped to
// storage.ErrNotFound by trade, note and screenshot reads.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
