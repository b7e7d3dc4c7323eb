// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite record of every post the exporter wrote:
// which Notion page it came from, where it went and when.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/notion-publish/internal/emit"
)

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	page_id     TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	path        TEXT NOT NULL,
	images      INTEGER NOT NULL DEFAULT 0,
	exported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_exported_at ON exports(exported_at);
`

// Entry is one row of the ledger.
type Entry struct {
	PageID     string    `json:"page_id" yaml:"page_id"`
	Title      string    `json:"title" yaml:"title"`
	Path       string    `json:"path" yaml:"path"`
	Images     int       `json:"images" yaml:"images"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
}

// Ledger is the export history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	// Writes arrive from background tasks; one connection serialises them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record upserts the row for r.PageID. It satisfies emit.Recorder.
func (l *Ledger) Record(ctx context.Context, r emit.Record) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO exports (page_id, title, path, images, exported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			title = excluded.title,
			path = excluded.path,
			images = excluded.images,
			exported_at = excluded.exported_at`,
		r.PageID, r.Title, r.Path, r.Images, r.ExportedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording export of %s: %w", r.PageID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of 0 or less
// returns every entry.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT page_id, title, path, images, exported_at FROM exports
		ORDER BY exported_at DESC, page_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var exportedAt string
		if err := rows.Scan(&e.PageID, &e.Title, &e.Path, &e.Images, &exportedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, exportedAt); err == nil {
			e.ExportedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Lookup returns the entry for pageID, or false if the page was never exported.
func (l *Ledger) Lookup(ctx context.Context, pageID string) (Entry, bool, error) {
	var e Entry
	var exportedAt string
	err := l.db.QueryRowContext(ctx,
		`SELECT page_id, title, path, images, exported_at FROM exports WHERE page_id = ?`, pageID).
		Scan(&e.PageID, &e.Title, &e.Path, &e.Images, &exportedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("looking up %s: %w", pageID, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, exportedAt); err == nil {
		e.ExportedAt = t
	}
	return e, true, nil
}
