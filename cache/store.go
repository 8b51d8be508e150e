// Package cache provides an optional local cache of fetched blocks,
// keyed by id with a fetch timestamp, to avoid redundant reads across
// repeated runs. It is never authoritative for write decisions: the
// writer's protection checks always refetch.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/c360studio/blockclone/block"
)

//go:embed schema.sql
var schemaSQL string

// Store persists block snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens a cache database at the given path. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to cache database: %w", err)
	}

	// SQLite allows one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutBlock stores a block snapshot with the current fetch time.
func (s *Store) PutBlock(ctx context.Context, b *block.Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode block %s: %w", b.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blocks (id, type, data, fetched_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Type, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store block %s: %w", b.ID, err)
	}
	return nil
}

// GetBlock returns a cached block no older than maxAge. The second
// return reports whether a fresh entry was found.
func (s *Store) GetBlock(ctx context.Context, id string, maxAge time.Duration) (*block.Block, bool, error) {
	var data string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, fetched_at FROM blocks WHERE id = ?`, id).Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read block %s: %w", id, err)
	}
	if stale(fetchedAt, maxAge) {
		return nil, false, nil
	}

	var b block.Block
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, false, fmt.Errorf("decode cached block %s: %w", id, err)
	}
	return &b, true, nil
}

// PutChildren stores the full ordered child list of a parent.
func (s *Store) PutChildren(ctx context.Context, parentID string, kids []block.Block) error {
	data, err := json.Marshal(kids)
	if err != nil {
		return fmt.Errorf("encode children of %s: %w", parentID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO children (parent_id, data, fetched_at) VALUES (?, ?, ?)`,
		parentID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store children of %s: %w", parentID, err)
	}
	return nil
}

// GetChildren returns a cached child list no older than maxAge.
func (s *Store) GetChildren(ctx context.Context, parentID string, maxAge time.Duration) ([]block.Block, bool, error) {
	var data string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, fetched_at FROM children WHERE parent_id = ?`, parentID).Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read children of %s: %w", parentID, err)
	}
	if stale(fetchedAt, maxAge) {
		return nil, false, nil
	}

	var kids []block.Block
	if err := json.Unmarshal([]byte(data), &kids); err != nil {
		return nil, false, fmt.Errorf("decode cached children of %s: %w", parentID, err)
	}
	return kids, true, nil
}

func stale(fetchedAt int64, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return time.Since(time.Unix(fetchedAt, 0)) > maxAge
}
