// Package sqlite persists worker cache partitions in a SQLite database so the
// cache survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/mdblog/worker"
	_ "modernc.org/sqlite"
)

// CacheStorage is a worker.Storage backed by SQLite.
type CacheStorage struct {
	db *sql.DB
}

var _ worker.Storage = (*CacheStorage)(nil)

// Open opens (or creates) the database at path, ensures the data directory
// exists and creates the schema.
func Open(path string) (*CacheStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// WAL lets background cache writes proceed while requests read; writers
	// wait on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &CacheStorage{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *CacheStorage) Close() error {
	return s.db.Close()
}

func (s *CacheStorage) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS caches (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS entries (
    cache TEXT NOT NULL,
    url TEXT NOT NULL,
    status INTEGER NOT NULL,
    header TEXT NOT NULL,
    body BLOB NOT NULL,
    stored_at INTEGER NOT NULL,
    PRIMARY KEY (cache, url)
);
`)
	return err
}

func (s *CacheStorage) Open(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO caches (name) VALUES (?)`, name)
	return err
}

func (s *CacheStorage) Keys(ctx context.Context) ([]string, error) {
	return s.strings(ctx, `SELECT name FROM caches ORDER BY name`)
}

func (s *CacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE cache = ?`, name); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM caches WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

func (s *CacheStorage) Match(ctx context.Context, name, url string) (*worker.Entry, error) {
	var (
		header   string
		storedAt int64
		e        = worker.Entry{URL: url}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, header, body, stored_at FROM entries WHERE cache = ? AND url = ?`,
		name, url,
	).Scan(&e.Status, &header, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, worker.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	e.Header = make(http.Header)
	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		return nil, fmt.Errorf("decoding header of %s: %w", url, err)
	}
	if storedAt > 0 {
		e.StoredAt = time.Unix(0, storedAt)
	}
	return &e, nil
}

func (s *CacheStorage) Put(ctx context.Context, name string, e *worker.Entry) error {
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("encoding header of %s: %w", e.URL, err)
	}
	body := e.Body
	if body == nil {
		body = []byte{}
	}
	var storedAt int64
	if !e.StoredAt.IsZero() {
		storedAt = e.StoredAt.UnixNano()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO caches (name) VALUES (?)`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries (cache, url, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?, ?)`,
		name, e.URL, e.Status, string(header), body, storedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *CacheStorage) URLs(ctx context.Context, name string) ([]string, error) {
	return s.strings(ctx, `SELECT url FROM entries WHERE cache = ? ORDER BY url`, name)
}

func (s *CacheStorage) Remove(ctx context.Context, name, url string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE cache = ? AND url = ?`, name, url)
	return err
}

func (s *CacheStorage) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
