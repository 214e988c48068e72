// Package history keeps a SQLite record of completed fetches. Purely
// informational: the cache itself never consults it, so a missing or broken
// history DB only disables /history.json.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed materialization.
type Entry struct {
	Provider  string    `json:"provider"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Bytes     int64     `json:"bytes"`
	FetchMS   int64     `json:"fetch_ms"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS fetches (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	provider   TEXT NOT NULL,
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	bytes      INTEGER NOT NULL,
	fetch_ms   INTEGER NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS fetches_at ON fetches (fetched_at);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetches (provider, video_id, title, url, bytes, fetch_ms, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Provider, e.ID, e.Title, e.URL, e.Bytes, e.FetchMS, e.FetchedAt)
	return err
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, video_id, title, url, bytes, fetch_ms, fetched_at
		 FROM fetches ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Provider, &e.ID, &e.Title, &e.URL, &e.Bytes, &e.FetchMS, &e.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
