package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sequenceCounter numbers journal rows across every table, so a badge
// unlock can be ordered against the game that earned it.
type sequenceCounter struct {
	db *sql.DB
}

func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS journal_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next claims the next sequence number. The upsert is a single statement,
// so concurrent callers never see the same value.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	const upsert = `INSERT INTO journal_sequence (id, value) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET value = value + 1
		RETURNING value`
	var seq int64
	if err := sc.db.QueryRowContext(ctx, upsert).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
