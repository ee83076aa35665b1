// Package store is the SQLite persistence layer. The on-disk form is always
// the complete last-saved snapshot of one project's knowledge graph: Save
// replaces every row of every table inside a single transaction, and Load
// reads all three tables back in full. Point queries (by file, by name
// substring, aggregate stats) read the snapshot without materializing a
// graph.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the three snapshot tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS entities (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  entity_type     TEXT NOT NULL,
  file_path       TEXT NOT NULL,
  line_start      INTEGER NOT NULL,
  line_end        INTEGER NOT NULL,
  column_start    INTEGER NOT NULL,
  column_end      INTEGER NOT NULL,
  metadata        TEXT NOT NULL DEFAULT '{}',
  created_at      TEXT NOT NULL,
  updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS relationships (
  id                TEXT PRIMARY KEY,
  from_entity       TEXT NOT NULL,
  to_entity         TEXT NOT NULL,
  relationship_type TEXT NOT NULL,
  metadata          TEXT NOT NULL DEFAULT '{}',
  created_at        TEXT NOT NULL,
  updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_hashes (
  file_path       TEXT PRIMARY KEY,
  hash            TEXT NOT NULL,
  updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_file_path ON entities(file_path);
CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
`
