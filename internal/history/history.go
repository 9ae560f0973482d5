// Package history records every build and the pages it produced in a SQLite
// database, for the history command and for auditing regenerations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// Status of a build.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// PageStatus describes what happened to one output page.
type PageStatus string

const (
	PageWritten   PageStatus = "written"
	PageUnchanged PageStatus = "unchanged"
	PageSkipped   PageStatus = "dry-run"
)

// Build summarizes one run of the generator.
type Build struct {
	ID          string
	Trigger     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      Status
	Characters  int
	Written     int
	Unchanged   int
	Warnings    int
	Errors      int
	BrokenLinks int
	Message     string
}

// Duration is the wall time of a finished build.
func (b Build) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// Page is one output file of a build.
type Page struct {
	BuildID   string
	Path      string
	Character string
	Status    PageStatus
	Bytes     int

	// Fingerprint is the content hash of the written page; empty when unchanged.
	Fingerprint string
}

// Store implements build history on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the history database at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create history directory").
				WithContext("path", path).Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "open history database").
			WithContext("path", path).Build()
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "initialize history schema").Build()
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		build_trigger TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		status TEXT NOT NULL,
		characters INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		unchanged INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		broken_links INTEGER NOT NULL DEFAULT 0,
		message TEXT
	);
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL REFERENCES builds(id),
		path TEXT NOT NULL,
		character TEXT,
		status TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		fingerprint TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_pages_build ON pages(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Begin inserts a running build with a fresh ID.
func (s *Store) Begin(ctx context.Context, trigger string, started time.Time) (*Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &Build{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: started,
		Status:    StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, build_trigger, started_at, status) VALUES (?, ?, ?, ?)",
		b.ID, b.Trigger, started.UnixMilli(), string(b.Status),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "insert build").Build()
	}
	return b, nil
}

// RecordPage stores one output page of a build.
func (s *Store) RecordPage(ctx context.Context, p Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pages (build_id, path, character, status, bytes, fingerprint) VALUES (?, ?, ?, ?, ?, ?)",
		p.BuildID, p.Path, p.Character, string(p.Status), p.Bytes, p.Fingerprint,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert page").
			WithContext("path", p.Path).Build()
	}
	return nil
}

// Finish writes the final counters and status of b.
func (s *Store) Finish(ctx context.Context, b *Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE builds SET finished_at = ?, status = ?, characters = ?,
		written = ?, unchanged = ?, warnings = ?, errors = ?, broken_links = ?, message = ? WHERE id = ?`,
		b.FinishedAt.UnixMilli(), string(b.Status), b.Characters, b.Written, b.Unchanged,
		b.Warnings, b.Errors, b.BrokenLinks, b.Message, b.ID,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "update build").WithContext("build_id", b.ID).Build()
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ferrors.NewError(ferrors.CategoryNotFound, "unknown build").WithContext("build_id", b.ID).Build()
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, build_trigger, started_at, finished_at, status, characters,
		written, unchanged, warnings, errors, broken_links, message
		FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query builds").Build()
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var (
			b        Build
			started  int64
			finished sql.NullInt64
			status   string
			message  sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Trigger, &started, &finished, &status, &b.Characters,
			&b.Written, &b.Unchanged, &b.Warnings, &b.Errors, &b.BrokenLinks, &message); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		b.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			b.FinishedAt = time.UnixMilli(finished.Int64)
		}
		b.Status = Status(status)
		b.Message = message.String
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// Pages returns the pages recorded for buildID in insertion order.
func (s *Store) Pages(ctx context.Context, buildID string) ([]Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, path, character, status, bytes, fingerprint FROM pages WHERE build_id = ? ORDER BY id", buildID)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query pages").Build()
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var (
			p         Page
			character   sql.NullString
			fingerprint sql.NullString
			status      string
		)
		if err := rows.Scan(&p.BuildID, &p.Path, &character, &status, &p.Bytes, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.Character = character.String
		p.Fingerprint = fingerprint.String
		p.Status = PageStatus(status)
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
