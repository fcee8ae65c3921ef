package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a throwaway PostgreSQL container with the journal
// schema applied. Returns a cleanup function that must be called after
// tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("journal_test"),
		postgres.WithUsername("journal"),
		postgres.WithPassword("journal"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applyJournalSchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applyJournalSchema creates the fills, trades and annotation tables by
// replaying the SQL under internal/storage/migrations/postgres. The files
// are read from disk rather than through the migrations package, which
// would pull this package into the test binary twice via an import cycle.
func applyJournalSchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	schemaDir := filepath.Join(repoRoot(t), "internal", "storage", "migrations", "postgres")
	entries, err := os.ReadDir(schemaDir)
	require.NoError(t, err, "failed to read schema directory")

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	require.NotEmpty(t, files, "no schema files found in %s", schemaDir)

	for _, file := range files {
		ddl, err := os.ReadFile(filepath.Join(schemaDir, file))
		require.NoError(t, err, "failed to read schema file: %s", file)

		_, err = pool.Exec(ctx, string(ddl))
		require.NoError(t, err, "failed to apply schema file: %s", file)
	}
}

// repoRoot walks up from the test's working directory to the module root.
func repoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find module root (go.mod)")
		}
		dir = parent
	}
}
