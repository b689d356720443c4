package db

import (
	"context"
	"fmt"
)

// usageColumns are the columns added after the first schema, in order.
var usageColumns = []struct {
	name string
	ddl  string
}{
	{"input_tokens", "INTEGER NOT NULL DEFAULT 0"},
	{"output_tokens", "INTEGER NOT NULL DEFAULT 0"},
	{"duration_ms", "INTEGER NOT NULL DEFAULT 0"},
	{"session_id", "TEXT"},
	{"error", "TEXT"},
}

// migrate adds missing columns and indexes to the usage table.
func (db *DB) migrate() error {
	existing, err := db.columns("usage")
	if err != nil {
		return err
	}

	for _, col := range usageColumns {
		if existing[col.name] {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE usage ADD COLUMN %s %s", col.name, col.ddl)
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage(provider, model)",
	}
	for _, query := range indexes {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func (db *DB) columns(table string) (map[string]bool, error) {
	rows, err := db.QueryContext(context.Background(), "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// FixLegacyTimeFormats rewrites ISO-8601 timestamps ("2024-05-01T10:00:00.123456")
// written by earlier releases into the "YYYY-MM-DD HH:MM:SS" form the range
// queries compare against.
func (db *DB) FixLegacyTimeFormats() error {
	query := `
		UPDATE usage
		SET timestamp = REPLACE(SUBSTR(timestamp, 1, 19), 'T', ' ')
		WHERE timestamp LIKE '____-__-__T%'`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to fix legacy time formats: %w", err)
	}
	return nil
}
