// Package migrations carries the journal's schema and applies it at
// startup: the PostgreSQL tables behind the fill cache, reconstructed
// trades and their annotations, and the ClickHouse candle cache. All
// migrations are idempotent so every boot replays the full set.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// sqlFiles lists a directory's .sql files in lexical order, which is the
// apply order. Numbered filenames (001_..., 002_...) keep that stable.
func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, dir+"/"+entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
