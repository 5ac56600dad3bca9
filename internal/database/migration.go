package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// ImportSessionsFromJSON loads session strings exported by the bridges
// into the session table. The import runs once; later calls are no-ops.
func (d *Database) ImportSessionsFromJSON(ctx context.Context, jsonPath string) (int, error) {
	var status string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM database_metadata WHERE key = 'session_import_status'").Scan(&status)
	if err == nil && status == "completed" {
		slog.Info("Session import already completed, skipping")
		return 0, nil
	}

	file, err := os.Open(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open sessions file: %w", err)
	}
	defer file.Close()

	var export struct {
		Sessions []struct {
			Backend string `json:"backend"`
			Session string `json:"session"`
			SavedAt string `json:"savedAt,omitempty"`
		} `json:"sessions"`
	}
	if err := json.NewDecoder(file).Decode(&export); err != nil {
		return 0, fmt.Errorf("failed to decode sessions JSON: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO relay_sessions (backend, state, token, updated_at)
		VALUES (?, 'ready', ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var imported int
	for _, s := range export.Sessions {
		if s.Backend == "" || s.Session == "" {
			continue
		}
		savedAt := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, s.SavedAt); err == nil {
			savedAt = parsed.UTC()
		}
		if _, err := stmt.ExecContext(ctx, s.Backend, s.Session, savedAt); err != nil {
			return 0, fmt.Errorf("failed to import session %s: %w", s.Backend, err)
		}
		imported++
	}

	if _, err := tx.ExecContext(ctx, "UPDATE database_metadata SET value = 'completed' WHERE key = 'session_import_status'"); err != nil {
		return 0, fmt.Errorf("failed to update import status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Imported messaging sessions", "count", imported)
	return imported, nil
}
