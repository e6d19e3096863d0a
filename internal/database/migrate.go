package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ApplyMigrations executes every .sql file under migrations/ in the given
// filesystem, in lexical order. Statements are split on ";" so a file may
// contain more than one. Files are written to be idempotent (CREATE TABLE IF
// NOT EXISTS), so re-running is safe. Returns the number of files applied.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, migrations fs.FS) (int, error) {
	entries, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return 0, fmt.Errorf("fs.Glob() > %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		contents, err := fs.ReadFile(migrations, name)
		if err != nil {
			return 0, fmt.Errorf("fs.ReadFile(%s) > %w", name, err)
		}

		for _, statement := range splitStatements(string(contents)) {
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return 0, fmt.Errorf("apply %s: %w", name, err)
			}
		}
		slog.Default().Info("applied migration", "file", name)
	}
	return len(entries), nil
}

func splitStatements(contents string) []string {
	var statements []string
	for _, statement := range strings.Split(contents, ";") {
		statement = strings.TrimSpace(statement)
		if statement == "" {
			continue
		}
		statements = append(statements, statement)
	}
	return statements
}
