package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/dewgong5/nwhacks2026/internal/domain"
)

// TickStore persists the append-only tick-log history in SQLite. One
// row per tick, JSON payload; the stored history is the input to the
// replay auditor.
type TickStore struct {
	db *sql.DB
}

// NewTickStore opens (or creates) a tick store with WAL mode enabled.
func NewTickStore(dbPath string) (*TickStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Run metadata as KV (scenario name, seed, start time).
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			orders INTEGER NOT NULL,
			trades INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticks table: %w", err)
	}

	return &TickStore{db: db}, nil
}

// SaveTick stores one tick log. Tick indices are unique; writing the
// same tick twice is a caller bug surfaced as a constraint error.
func (s *TickStore) SaveTick(ctx context.Context, log domain.TickLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal tick %d: %w", log.Tick, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO ticks (tick, orders, trades, payload) VALUES (?, ?, ?, ?)",
		log.Tick, len(log.Orders), len(log.Trades), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tick %d: %w", log.Tick, err)
	}
	return nil
}

// LoadTicks loads all tick logs from fromTick (inclusive) in order.
func (s *TickStore) LoadTicks(ctx context.Context, fromTick int64) ([]domain.TickLog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tick, payload FROM ticks WHERE tick >= ? ORDER BY tick ASC",
		fromTick,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var logs []domain.TickLog
	for rows.Next() {
		var tick int64
		var payload []byte
		if err := rows.Scan(&tick, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}

		var log domain.TickLog
		if err := json.Unmarshal(payload, &log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tick %d: %w", tick, err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return logs, nil
}

// LastTick returns the highest stored tick index, or -1 when the
// store is empty.
func (s *TickStore) LastTick(ctx context.Context) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(tick) FROM ticks").Scan(&last)
	if err != nil {
		return -1, fmt.Errorf("failed to get last tick: %w", err)
	}
	if !last.Valid {
		return -1, nil
	}
	return last.Int64, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *TickStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table ("" if absent).
func (s *TickStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Close closes the database connection.
func (s *TickStore) Close() error {
	return s.db.Close()
}
