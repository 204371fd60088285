package scans

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// revision is one embedded schema step. Files are named NNNN_name.sql and
// applied in ascending numeric order; the prefix is the revision number.
type revision struct {
	number int64
	name   string
	sql    string
}

func loadRevisions() ([]revision, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	revisions := make([]revision, 0, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		prefix, _, _ := strings.Cut(base, "_")
		number, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s: name must start with a numeric revision: %w", name, err)
		}
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		revisions = append(revisions, revision{number: number, name: base, sql: string(data)})
	}
	sort.Slice(revisions, func(i, j int) bool { return revisions[i].number < revisions[j].number })
	for i := 1; i < len(revisions); i++ {
		if revisions[i].number == revisions[i-1].number {
			return nil, fmt.Errorf("duplicate migration revision %d (%s, %s)", revisions[i].number, revisions[i-1].name, revisions[i].name)
		}
	}
	return revisions, nil
}

// applyMigrations brings the schema up to the newest embedded revision.
// Each revision commits in its own transaction so a failure leaves every
// earlier revision applied and recorded.
func (s *Store) applyMigrations(ctx context.Context) error {
	revisions, err := loadRevisions()
	if err != nil {
		return err
	}

	if err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_revisions (
				revision INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TEXT NOT NULL DEFAULT (`+timestampExpr+`)
			)`)
		return execErr
	}); err != nil {
		return fmt.Errorf("ensure schema_revisions: %w", err)
	}

	var current sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT MAX(revision) FROM schema_revisions")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema revision: %w", err)
	}

	for _, rev := range revisions {
		if current.Valid && rev.number <= current.Int64 {
			continue
		}
		if err := retryOnBusy(ctx, func() error {
			return s.applyRevision(ctx, rev)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyRevision(ctx context.Context, rev revision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, rev.sql); err != nil {
		return fmt.Errorf("apply migration %s: %w", rev.name, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_revisions (revision, name) VALUES (?, ?)", rev.number, rev.name); err != nil {
		return fmt.Errorf("record migration %s: %w", rev.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", rev.name, err)
	}
	return nil
}
