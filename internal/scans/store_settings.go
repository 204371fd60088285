package scans

import (
	"context"
	"fmt"
)

// Settings returns every stored key/value pair.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting row: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// UpsertSetting stores one key/value pair, replacing any prior value.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key must not be empty")
	}
	_, err := s.execWithRetry(ensureContext(ctx),
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
