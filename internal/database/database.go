package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

var ErrSessionNotFound = errors.New("session not found")

type Database struct {
	db *sql.DB
}

// SessionRow is a persisted messaging session.
type SessionRow struct {
	Backend   string
	State     string
	Token     string
	UpdatedAt time.Time
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_cache_size=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	database := &Database{db: db}
	if err := database.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initializeSchema() error {
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// SaveSession inserts or replaces the session of a backend.
func (d *Database) SaveSession(ctx context.Context, backend, state, token string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO relay_sessions (backend, state, token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(backend) DO UPDATE SET
			state = excluded.state,
			token = excluded.token,
			updated_at = excluded.updated_at
	`, backend, state, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the saved state and token of a backend.
func (d *Database) LoadSession(ctx context.Context, backend string) (string, string, error) {
	row, err := d.GetSession(ctx, backend)
	if err != nil {
		return "", "", err
	}
	return row.State, row.Token, nil
}

func (d *Database) GetSession(ctx context.Context, backend string) (*SessionRow, error) {
	var row SessionRow
	err := d.db.QueryRowContext(ctx, `
		SELECT backend, state, token, updated_at
		FROM relay_sessions
		WHERE backend = ?
	`, backend).Scan(&row.Backend, &row.State, &row.Token, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", backend, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &row, nil
}

// ListSessions returns every saved session ordered by backend.
func (d *Database) ListSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT backend, state, token, updated_at
		FROM relay_sessions
		ORDER BY backend
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var row SessionRow
		if err := rows.Scan(&row.Backend, &row.State, &row.Token, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteSession removes a backend's session. Deleting a missing session is
// not an error.
func (d *Database) DeleteSession(ctx context.Context, backend string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM relay_sessions WHERE backend = ?", backend); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
