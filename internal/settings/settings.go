// Package settings is the system configuration store behind the admin
// dashboard: a key/value table with JSONB values and typed getters for
// the handful of keys the backend itself consumes.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Well-known configuration keys consumed by the backend.
const (
	KeyLowStockThreshold  = "low_stock_threshold"
	KeyLowStockRecipients = "low_stock_recipients"
)

// ErrNotFound indicates the configuration key has no value.
var ErrNotFound = errors.New("settings: key not found")

// Repository provides Postgres access to system configuration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the raw JSON value for a key.
func (r *Repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value json.RawMessage
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM system_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("settings: get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for a key. value must be JSON-marshalable.
func (r *Repository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("settings: marshal %q: %w", key, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO system_settings (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("settings: set %q: %w", key, err)
	}
	return nil
}

// All returns the full configuration map for the admin dashboard.
func (r *Repository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("settings: list: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value json.RawMessage
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("settings: scan: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

// GetInt reads an integer setting, returning fallback when the key is
// missing or malformed.
func (r *Repository) GetInt(ctx context.Context, key string, fallback int) int {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return fallback
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return fallback
	}
	return n
}

// GetStrings reads a string-list setting, returning fallback when the key
// is missing or malformed.
func (r *Repository) GetStrings(ctx context.Context, key string, fallback []string) []string {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return fallback
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback
	}
	return out
}
