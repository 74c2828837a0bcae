// Package history keeps recently used corpus directories and queries in a
// local SQLite database so inputs can offer them as suggestions.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Kind separates the two suggestion lists.
type Kind string

const (
	Corpus Kind = "corpus"
	Query  Kind = "query"
)

// DefaultLimit bounds how many entries of each kind are kept.
const DefaultLimit = 50

// Entry is one remembered value.
type Entry struct {
	Kind     Kind
	Value    string
	Uses     int
	LastUsed time.Time
}

// Store is a SQLite-backed history. Safe for concurrent use.
type Store struct {
	db    *sql.DB
	limit int
}

var schema = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	`CREATE TABLE IF NOT EXISTS history (
		kind     TEXT    NOT NULL,
		value    TEXT    NOT NULL,
		seq      INTEGER NOT NULL,
		uses     INTEGER NOT NULL DEFAULT 1,
		used_at  INTEGER NOT NULL,
		PRIMARY KEY (kind, value)
	);`,
	"CREATE INDEX IF NOT EXISTS history_kind_seq ON history (kind, seq DESC);",
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init history: %w", err)
		}
	}
	return &Store{db: db, limit: DefaultLimit}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record marks value as just used. Blank values are ignored.
func (s *Store) Record(ctx context.Context, kind Kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (kind, value, seq, uses, used_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM history), 1, ?)
		ON CONFLICT (kind, value) DO UPDATE SET
			seq = excluded.seq,
			uses = history.uses + 1,
			used_at = excluded.used_at`,
		string(kind), value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history
		WHERE kind = ? AND seq NOT IN (
			SELECT seq FROM history WHERE kind = ? ORDER BY seq DESC LIMIT ?
		)`,
		string(kind), string(kind), s.limit)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to limit entries of kind, most recent first.
func (s *Store) Recent(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, uses, used_at FROM history
		WHERE kind = ?
		ORDER BY seq DESC
		LIMIT ?`,
		string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			used int64
		)
		if err := rows.Scan(&e.Value, &e.Uses, &used); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Kind = kind
		e.LastUsed = time.UnixMilli(used)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Values returns the values of Recent.
func (s *Store) Values(ctx context.Context, kind Kind, limit int) ([]string, error) {
	entries, err := s.Recent(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values, nil
}
