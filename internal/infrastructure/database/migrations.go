package database

import (
	"context"
	"fmt"
)

// migration is one versioned schema change. Migrations run in order and
// exactly once; applied versions are tracked in schema_migrations.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations is the ordered schema history. Append only; never edit an
// entry that has shipped.
var migrations = []migration{
	{
		version: 1,
		name:    "connection_events",
		sql: `
			CREATE TABLE connection_events (
				id          TEXT PRIMARY KEY,
				state       TEXT NOT NULL,
				broker_error INTEGER NOT NULL DEFAULT 0,
				created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_connection_events_created_at
				ON connection_events(created_at);
		`,
	},
}

// Migrate applies all pending schema migrations inside transactions.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", m.version, err)
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version, m.name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}

	return nil
}

// schemaVersion returns the highest applied migration version, 0 when
// none have been applied.
func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations",
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
