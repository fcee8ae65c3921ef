package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"hl-journal/internal/storage/postgres"
)

// RunPostgresMigrations creates the journal's relational schema: fills,
// trades, trade_notes, trade_tags, trade_screenshots, calendar_notes and
// week_notes. Safe to run on every startup.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(postgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, file := range files {
		ddl, err := fs.ReadFile(postgresFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(ddl)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
