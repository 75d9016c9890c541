package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritzau/casegraph/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	body     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLite stores each case as a JSON document row, keeping list order in a
// position column. A "saved" marker in the meta table distinguishes an
// explicitly stored empty list from a fresh database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and if needed creates) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// one writer; the store already serializes saves
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file location
func (s *SQLite) Path() string {
	return s.path
}

// Close releases the database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadCases returns nil, nil when nothing has ever been saved
func (s *SQLite) LoadCases(ctx context.Context) ([]model.Case, error) {
	var saved string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'saved'`).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save marker: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM cases ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	cases := []model.Case{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		var c model.Case
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			return nil, fmt.Errorf("failed to decode case %s: %w", id, err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cases: %w", err)
	}
	return cases, nil
}

// SaveCases replaces all rows in one transaction
func (s *SQLite) SaveCases(ctx context.Context, cases []model.Case) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM cases`); err != nil {
		return fmt.Errorf("failed to clear cases: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cases (id, position, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range cases {
		body, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode case %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, i, string(body)); err != nil {
			return fmt.Errorf("failed to insert case %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('saved', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write save marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
