package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plantlink/plantlink-core/internal/conn"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// Entry is one recorded connection-state transition.
type Entry struct {
	ID          string
	State       string
	BrokerError conn.BrokerErrorCode
	CreatedAt   time.Time
}

// Repository persists connection-state transitions in the
// connection_events table so an operator can reconstruct why a node was
// offline after the fact.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over an open database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts one state transition.
func (r *Repository) Record(ctx context.Context, state conn.State, code conn.BrokerErrorCode) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO connection_events (id, state, broker_error) VALUES (?, ?, ?)",
		uuid.NewString(),
		state.String(),
		int(code),
	)
	if err != nil {
		return fmt.Errorf("inserting connection event: %w", err)
	}
	return nil
}

// Recent returns the latest transitions, newest first. limit defaults to
// 50 and is capped at 200.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, state, broker_error, created_at
		 FROM connection_events
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying connection events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var code int
		if err := rows.Scan(&e.ID, &e.State, &code, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning connection event: %w", err)
		}
		e.BrokerError = conn.BrokerErrorCode(code)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection events: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the retention window, returning the
// number removed. Keeps the event log bounded on long-lived nodes.
func (r *Repository) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()

	res, err := r.db.ExecContext(ctx,
		"DELETE FROM connection_events WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning connection events: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned connection events: %w", err)
	}
	return removed, nil
}
