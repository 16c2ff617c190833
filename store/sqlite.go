package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	cacheerrors "github.com/gozephyr/nscache/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// SQLite is a Surface backed by an embedded SQLite database (the cgo-free
// modernc driver), giving single-file durability without an external server.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if necessary creates) the database at path and
// prepares the entry table. Use ":memory:" for a throwaway database.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cacheerrors.Wrap("store.NewSQLite", "", err)
	}
	// The modernc driver is not safe for concurrent writes over multiple
	// connections on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, cacheerrors.Wrap("store.NewSQLite", "", err)
	}
	return &SQLite{db: db}, nil
}

// Get implements Surface.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cacheerrors.Wrap("store.SQLite.Get", key, err)
	}
	return value, true, nil
}

// Set implements Surface.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return cacheerrors.Wrap("store.SQLite.Set", key, err)
	}
	return nil
}

// Delete implements Surface.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return cacheerrors.Wrap("store.SQLite.Delete", key, err)
	}
	return nil
}

// Keys implements Surface.
func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM cache_entries WHERE key >= ? AND key < ?`,
		prefix, nextPrefix(prefix))
	if err != nil {
		return nil, cacheerrors.Wrap("store.SQLite.Keys", "", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, cacheerrors.Wrap("store.SQLite.Keys", "", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, cacheerrors.Wrap("store.SQLite.Keys", "", err)
	}
	return keys, nil
}

// Clear implements Surface.
func (s *SQLite) Clear(ctx context.Context, prefix string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key >= ? AND key < ?`,
		prefix, nextPrefix(prefix)); err != nil {
		return cacheerrors.Wrap("store.SQLite.Clear", "", err)
	}
	return nil
}

// Close implements Surface.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// nextPrefix returns the smallest string greater than every string with the
// given prefix, for half-open range scans on the key column.
func nextPrefix(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	// All 0xff bytes: no upper bound; use a sentinel past any UTF-8 key.
	return prefix + "\xff"
}
