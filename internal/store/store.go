// Package store handles all database operations.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store persists accounts, posts, and analysis results in SQLite.
type Store struct {
	db *sql.DB
}

// PersistError wraps a storage fault; it is isolated per post/account by
// callers and never aborts a cycle.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// New creates a Store with a SQLite backend at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		handle TEXT NOT NULL UNIQUE,
		display_name TEXT,
		cursor TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		account_handle TEXT NOT NULL,
		content TEXT NOT NULL,
		published_at DATETIME,
		likes INTEGER,
		reposts INTEGER,
		replies INTEGER,
		media_urls TEXT,
		fetched_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analysis (
		post_id TEXT PRIMARY KEY REFERENCES posts(id),
		sentiment TEXT,
		sentiment_reason TEXT,
		keywords TEXT,
		summary TEXT,
		analyzed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_account ON posts(account_handle);
	CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
