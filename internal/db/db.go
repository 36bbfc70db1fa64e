// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens and pings a postgres connection.
func Connect(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return conn, nil
}

// Migrate creates the schema and seeds default settings. Safe to run
// on every startup.
func Migrate(conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			id SERIAL PRIMARY KEY,
			account_name TEXT NOT NULL,
			campaign_name TEXT NOT NULL,
			launch_date DATE NOT NULL,
			last_scaled_date DATE,
			notification_interval_days INTEGER NOT NULL DEFAULT 7,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ
		)`,
		// campaign_id is a plain reference, not a foreign key: ledger
		// rows must survive campaign deletion.
		`CREATE TABLE IF NOT EXISTS notifications_log (
			id SERIAL PRIMARY KEY,
			campaign_id INTEGER NOT NULL,
			account_name TEXT NOT NULL,
			campaign_name TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_log_sent_at
			ON notifications_log (sent_at DESC)`,
		`INSERT INTO settings (key, value) VALUES
			('google_sheet_id', ''),
			('default_notification_interval_days', '7')
			ON CONFLICT (key) DO NOTHING`,
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
