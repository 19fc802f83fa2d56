// Package cache is a time-boxed key-value store backed by a local
// SQLite database. Every entry records the instant it was stored;
// readers supply the freshness window they are willing to accept, so
// list and detail data can share one store with different expiries.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sqlx.DB

	now func() time.Time
}

const schema = /* sql */ `
	CREATE TABLE IF NOT EXISTS cache_entry (
		key       TEXT PRIMARY KEY,
		stored_at INTEGER NOT NULL,
		data      BLOB NOT NULL
	)
`

// Open creates (or opens) the store at the given path. ":memory:" gives
// an ephemeral store for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite is single-writer, and a ":memory:" database exists per
	// connection; one pooled connection keeps both cases correct.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock replaces the store's clock, letting tests simulate expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

var ErrMiss = errors.New("cache miss")

type row struct {
	Key      string `db:"key"`
	StoredAt int64  `db:"stored_at"`
	Data     []byte `db:"data"`
}

// Get unmarshals the entry for key into dest if the entry is younger
// than maxAge. An absent or stale entry reports ErrMiss.
func (s *Store) Get(ctx context.Context, key string, maxAge time.Duration, dest any) error {
	var r row
	err := s.db.QueryRowxContext(ctx,
		/* sql */ `
		SELECT key, stored_at, data
		FROM cache_entry
		WHERE key = ?
	`, key).StructScan(&r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no entry for key %q: %w", key, ErrMiss)
		}
		return fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}

	age := s.now().Sub(time.UnixMilli(r.StoredAt))
	if age >= maxAge {
		return fmt.Errorf("entry for key %q is stale (age %v): %w", key, age, ErrMiss)
	}

	err = json.Unmarshal(r.Data, dest)
	if err != nil {
		return fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}

	return nil
}

// Put stores value under key, replacing any existing entry and
// resetting its timestamp.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		/* sql */ `
		INSERT INTO cache_entry (key, stored_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET stored_at = excluded.stored_at, data = excluded.data
	`, key, s.now().UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}

	return nil
}

// Contains reports whether a fresh entry exists for key, without
// decoding it.
func (s *Store) Contains(ctx context.Context, key string, maxAge time.Duration) (bool, error) {
	var storedAt int64
	err := s.db.QueryRowxContext(ctx,
		/* sql */ `
		SELECT stored_at
		FROM cache_entry
		WHERE key = ?
	`, key).Scan(&storedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe cache entry %q: %w", key, err)
	}

	return s.now().Sub(time.UnixMilli(storedAt)) < maxAge, nil
}

// Invalidate drops the entry for key, forcing the next read to miss.
// Used by the manual retry affordance.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		/* sql */ `
		DELETE FROM cache_entry
		WHERE key = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry %q: %w", key, err)
	}

	return nil
}
