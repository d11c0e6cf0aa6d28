package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported database types
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrWordNotFound is returned when a word ID does not exist
var ErrWordNotFound = errors.New("word not found")

// Config describes how to reach the database
type Config struct {
	// Driver is DriverSQLite or DriverPostgres
	Driver string
	// DSN is a file path for sqlite or a connection string for postgres
	DSN string
}

// Connect establishes a connection to the database and creates missing tables
func Connect(cfg Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres connection string is empty")
		}
		db, err = sqlx.Connect("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case DriverSQLite, "":
		db, err = connectSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Driver)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func connectSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		path = filepath.Join("data", "wordbox.db")
	}

	// Create data directory if it doesn't exist
	if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers. A single connection also keeps
	// in-memory databases alive between queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		name  string
		query string
	}{
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id ` + pk + `,
				english TEXT NOT NULL UNIQUE,
				persian TEXT NOT NULL,
				is_skipped BOOLEAN NOT NULL DEFAULT FALSE,
				is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
				date_added BIGINT NOT NULL,
				leitner_box INTEGER NOT NULL DEFAULT 1 CHECK (leitner_box BETWEEN 1 AND 5),
				next_review_date BIGINT NOT NULL
			)`},
		{"words review index", `
			CREATE INDEX IF NOT EXISTS idx_words_review ON words (leitner_box, next_review_date)`},
		{"game_state", `
			CREATE TABLE IF NOT EXISTS game_state (
				id ` + pk + `,
				word_id BIGINT NOT NULL UNIQUE REFERENCES words(id) ON DELETE CASCADE,
				correct_answer INTEGER NOT NULL DEFAULT 0,
				wrong_answer INTEGER NOT NULL DEFAULT 0
			)`},
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				telegram_id BIGINT PRIMARY KEY,
				username TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id ` + pk + `,
				user_id BIGINT NOT NULL DEFAULT 0,
				total_words INTEGER NOT NULL,
				correct_words INTEGER NOT NULL,
				score INTEGER NOT NULL,
				taken_at BIGINT NOT NULL
			)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint on
// either driver
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
