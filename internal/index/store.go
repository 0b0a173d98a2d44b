// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/isa-docset/pkg/types"
)

// defaultLookupLimit caps Lookup results when no limit is given.
const defaultLookupLimit = 20

// Store manages the docset index SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the index database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild replaces the searchIndex table with rows. Rows identical in
// (name, type, path) collapse into one. It returns the number of rows stored.
func (s *Store) Rebuild(ctx context.Context, rows []types.IndexRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DROP TABLE IF EXISTS searchIndex`,
		`CREATE TABLE searchIndex(id INTEGER PRIMARY KEY, name TEXT, type TEXT, path TEXT)`,
		`CREATE UNIQUE INDEX anchor ON searchIndex (name, type, path)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("executing schema statement: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO searchIndex(name, type, path) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.Name, r.Type, r.Path)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", r.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return inserted, nil
}

// Lookup returns rows whose name contains query, ordered by name.
func (s *Store) Lookup(ctx context.Context, query string, limit int) ([]types.IndexRow, error) {
	if limit <= 0 {
		limit = defaultLookupLimit
	}
	return s.query(ctx,
		`SELECT name, type, path FROM searchIndex WHERE name LIKE ? ESCAPE '\' ORDER BY name LIMIT ?`,
		"%"+escapeLike(query)+"%", limit)
}

// All returns every row ordered by name.
func (s *Store) All(ctx context.Context) ([]types.IndexRow, error) {
	return s.query(ctx, `SELECT name, type, path FROM searchIndex ORDER BY name`)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.IndexRow, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var out []types.IndexRow
	for rows.Next() {
		var r types.IndexRow
		if err := rows.Scan(&r.Name, &r.Type, &r.Path); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	var b []rune
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			b = append(b, '\\')
		}
		b = append(b, r)
	}
	return string(b)
}

// Summary holds counts from an index build.
type Summary struct {
	Entries    int
	Duplicates int
	Rows       int
}

// Build marks duplicate mnemonics in entries, then writes the index database
// at path from scratch and closes it.
func Build(ctx context.Context, path string, entries []*types.InstructionEntry, opts Options, log logrus.FieldLogger) (Summary, error) {
	summary := Summary{Entries: len(entries)}
	summary.Duplicates = MarkDuplicates(entries)

	store, err := Open(path)
	if err != nil {
		return summary, err
	}

	n, err := store.Rebuild(ctx, Rows(entries, opts))
	if err != nil {
		store.Close()
		return summary, err
	}
	summary.Rows = n

	if log != nil {
		log.WithFields(logrus.Fields{
			"entries":    summary.Entries,
			"duplicates": summary.Duplicates,
			"rows":       summary.Rows,
		}).Info("index written")
	}
	return summary, store.Close()
}
