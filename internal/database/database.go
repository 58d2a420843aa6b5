package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // The pure Go SQLite driver
)

// Service is the central struct for managing all database interactions.
// It holds the connection to the site database and ensures thread-safe
// write operations via a single write mutex: SQLite allows many readers
// but only one writer at a time.
type Service struct {
	dbPath string

	db      *sql.DB
	writeMu sync.Mutex
	log     *logrus.Logger
}

// DBorTx is an interface that allows query functions to accept either a `*sql.DB`
// for single queries or a `*sql.Tx` for operations within a transaction.
// All methods take a context so request cancellation propagates into the store.
type DBorTx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// NewService creates and initializes a new database service.
// It opens the database connection and prepares the service for use.
func NewService(dbPath string, log *logrus.Logger) (*Service, error) {
	// `?_foreign_keys=on` is crucial for data integrity.
	db, err := sql.Open("sqlite", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", dbPath, err)
	}

	// Ping the database to ensure the connection is alive.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", dbPath, err)
	}

	return &Service{
		dbPath: dbPath,
		db:     db,
		log:    log,
	}, nil
}

// DB provides a direct connection for read queries.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Write executes a write operation (INSERT, UPDATE, DELETE) within a
// transaction, protected by a mutex to ensure serial access.
func (s *Service) Write(writeFunc func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Execute the provided function. If it returns an error, rollback the transaction.
	if err := writeFunc(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	// If the function was successful, commit the transaction.
	return tx.Commit()
}

// Close safely closes the database connection when the application shuts down.
func (s *Service) Close() {
	s.db.Close()
	s.log.Info("Database connection closed.")
}

// InitSchema sets up the site schema if the tables don't exist.
// This is idempotent and safe to run on every application start; it replaces
// the per-request "probe for a column and fall back" hazard with a single
// startup guarantee about what the schema looks like.
func (s *Service) InitSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT,
			is_admin INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			user_id TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL,
			username TEXT NOT NULL,
			avatar_url TEXT,
			phone TEXT,
			location TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			images TEXT NOT NULL DEFAULT '[]',
			user_id TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			featured INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL
		);`,
		`CREATE TABLE IF NOT EXISTS gallery (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			images TEXT NOT NULL DEFAULT '[]',
			user_id TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			featured INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			project_id TEXT,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL,
			is_approved INTEGER, -- NULL means pending moderation
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL,
			FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE SET NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL, -- YYYY-MM-DD
			time TEXT NOT NULL, -- HH:MM
			location TEXT NOT NULL,
			address TEXT,
			spots INTEGER NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS meeting_registrations (
			id TEXT PRIMARY KEY,
			meeting_id TEXT,
			project_id TEXT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			company TEXT,
			message TEXT,
			status TEXT NOT NULL DEFAULT 'pending', -- pending, approved, rejected
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (meeting_id) REFERENCES meetings (id) ON DELETE CASCADE,
			FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'new', -- new, read, replied, archived
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	// Use the Write function to ensure this is thread-safe on first run.
	return s.Write(func(tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
