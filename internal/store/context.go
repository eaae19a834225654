package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// contextKey is the kv slot holding the last study context.
const contextKey = "lastContext"

// ContextRepo persists the reusable study context in the kv table.
type ContextRepo struct {
	db *sql.DB
}

// GetContext returns the stored context; ok is false when none was saved.
func (r *ContextRepo) GetContext(ctx context.Context) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, contextKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read context: %w", err)
	}
	return v, true, nil
}

// SetContext replaces the stored context.
func (r *ContextRepo) SetContext(ctx context.Context, content string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		contextKey, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	return nil
}

// ClearContext forgets the stored context.
func (r *ContextRepo) ClearContext(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, contextKey); err != nil {
		return fmt.Errorf("clear context: %w", err)
	}
	return nil
}

// UpdatedAt reports when the context was last written. The zero time means
// nothing is stored.
func (r *ContextRepo) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, contextKey).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read context timestamp: %w", err)
	}
	return time.Parse(time.RFC3339Nano, ts)
}
