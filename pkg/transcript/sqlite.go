// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists exchanges in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite transcript database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore creates a SQLite-backed store and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureTranscriptSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Record stores a single exchange.
func (s *SQLiteStore) Record(ctx context.Context, exchange Exchange) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_exchanges (
			id, received_at, sender, inbound_json, outbound_json, event_count, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		exchange.ID,
		normalizeTime(exchange.ReceivedAt),
		exchange.Sender,
		exchange.Inbound,
		exchange.Outbound,
		exchange.EventCount,
		exchange.Outcome,
	)
	return err
}

// List returns exchanges matching the filter, most recent first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Exchange, error) {
	query := `
		SELECT id, received_at, sender, inbound_json, outbound_json, event_count, outcome
		FROM transcript_exchanges
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Sender != "" {
		addFilter("sender = ?", filter.Sender)
	}
	if filter.Outcome != "" {
		addFilter("outcome = ?", filter.Outcome)
	}
	query += where + " ORDER BY received_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var (
			exchange Exchange
			received sql.NullTime
		)
		if err := rows.Scan(
			&exchange.ID,
			&received,
			&exchange.Sender,
			&exchange.Inbound,
			&exchange.Outbound,
			&exchange.EventCount,
			&exchange.Outcome,
		); err != nil {
			return nil, err
		}
		if received.Valid {
			exchange.ReceivedAt = received.Time
		}
		exchanges = append(exchanges, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exchanges, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ensureTranscriptSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transcript_exchanges (
			id TEXT PRIMARY KEY,
			received_at TIMESTAMP NOT NULL,
			sender TEXT NOT NULL,
			inbound_json TEXT NOT NULL,
			outbound_json TEXT NOT NULL,
			event_count INTEGER NOT NULL,
			outcome TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transcript_sender ON transcript_exchanges(sender);
		CREATE INDEX IF NOT EXISTS idx_transcript_outcome ON transcript_exchanges(outcome);
		CREATE INDEX IF NOT EXISTS idx_transcript_received ON transcript_exchanges(received_at);
	`)
	return err
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
