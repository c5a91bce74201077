// Package store provides sqlite-backed persistence for users, profiles,
// conversation turns and course progress.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store wraps the sqlite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Store opened", zap.String("path", path))
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		age INTEGER NOT NULL DEFAULT 0,
		income INTEGER NOT NULL DEFAULT 0,
		risk_appetite TEXT NOT NULL DEFAULT '',
		goals TEXT NOT NULL DEFAULT '[]',
		has_demographic INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		occupation TEXT NOT NULL DEFAULT '',
		has_psychological INTEGER NOT NULL DEFAULT 0,
		risk_tolerance TEXT NOT NULL DEFAULT '',
		financial_anxiety TEXT NOT NULL DEFAULT '',
		decision_style TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		conversation_id TEXT NOT NULL,
		query TEXT NOT NULL,
		response TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		feedback_helpful INTEGER,
		feedback_comments TEXT,
		feedback_rating INTEGER,
		feedback_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_user
		ON chat_sessions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_conversation
		ON chat_sessions(user_id, conversation_id, created_at);

	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT 'beginner',
		duration TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_progress (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		progress_percentage INTEGER NOT NULL DEFAULT 0,
		current_module TEXT NOT NULL DEFAULT '',
		completed_modules TEXT NOT NULL DEFAULT '[]',
		last_accessed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, course_id)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
