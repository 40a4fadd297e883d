// Package store persists projects and their element hierarchies in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Store wraps the SQLite handle. Safe for concurrent use; WAL mode keeps
// readers from blocking the writer.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// standard connection pragmas before migrating the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			owner_id          TEXT NOT NULL,
			canvas_width      INTEGER NOT NULL DEFAULT 1200,
			canvas_height     INTEGER NOT NULL DEFAULT 800,
			canvas_background TEXT NOT NULL DEFAULT '#ffffff',
			created_at        TIMESTAMP NOT NULL,
			updated_at        TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS project_collaborators (
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL,
			added_at   TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS elements (
			id         TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			type       TEXT NOT NULL,
			name       TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			x          REAL NOT NULL DEFAULT 0,
			y          REAL NOT NULL DEFAULT 0,
			width      REAL NOT NULL DEFAULT 100,
			height     REAL NOT NULL DEFAULT 100,
			styles     TEXT NOT NULL DEFAULT '{}',
			parent_id  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_project ON elements(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_parent ON elements(project_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collaborators_user ON project_collaborators(user_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
