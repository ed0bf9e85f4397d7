// Botwbuild is an incremental mod build pipeline for The Legend of Zelda: Breath of the Wild.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package cachedb is a SQLite-backed supplement to the mandatory mtimes.db
// flat file: a history of past build runs, listed by `botwbuild history`,
// and a ledger of the last known RSTB size per canonical resource name
// (UpsertRSTBSize/RSTBSize). The build pipeline records runs only; it does
// not write to the size ledger.
package cachedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no row matched the query.
var ErrNotFound = errors.New("cachedb: not found")

const defaultBusyTimeout = 5 * time.Second

// DB wraps a SQLite connection holding the build-history ledger.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the ledger database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		path, int(defaultBusyTimeout.Milliseconds()))

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cachedb: open: %w", err)
	}
	conn.SetConnMaxLifetime(0)
	conn.SetMaxIdleConns(2)
	conn.SetMaxOpenConns(4)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cachedb: ping: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cachedb: migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS build_runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			files_changed INTEGER NOT NULL DEFAULT 0,
			archives_rewritten INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rstb_sizes (
			canonical_name TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run is one recorded build invocation.
type Run struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	FilesChanged      int
	ArchivesRewritten int
	Succeeded         bool
	Error             string
}

// BeginRun inserts the start of a build run.
func (db *DB) BeginRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO build_runs (id, started_at) VALUES (?, ?)`, id, startedAt)
	if err != nil {
		return fmt.Errorf("cachedb: begin run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a previously begun run.
func (db *DB) FinishRun(ctx context.Context, id string, finishedAt time.Time, filesChanged, archivesRewritten int, runErr error) error {
	succeeded := runErr == nil
	var errText string
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := db.conn.ExecContext(ctx,
		`UPDATE build_runs SET finished_at = ?, files_changed = ?, archives_rewritten = ?, succeeded = ?, error = ? WHERE id = ?`,
		finishedAt, filesChanged, archivesRewritten, succeeded, errText, id)
	if err != nil {
		return fmt.Errorf("cachedb: finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit most recent runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, started_at), files_changed, archives_rewritten, succeeded, COALESCE(error, '')
		 FROM build_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cachedb: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.FilesChanged, &r.ArchivesRewritten, &r.Succeeded, &r.Error); err != nil {
			return nil, fmt.Errorf("cachedb: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRSTBSize records the last known compiled size for a canonical name.
func (db *DB) UpsertRSTBSize(ctx context.Context, canonicalName string, size uint32, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO rstb_sizes (canonical_name, size, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(canonical_name) DO UPDATE SET size = excluded.size, updated_at = excluded.updated_at`,
		canonicalName, size, at)
	if err != nil {
		return fmt.Errorf("cachedb: upsert rstb size: %w", err)
	}
	return nil
}

// RSTBSize returns the last recorded size for a canonical name.
func (db *DB) RSTBSize(ctx context.Context, canonicalName string) (uint32, error) {
	var size uint32
	err := db.conn.QueryRowContext(ctx,
		`SELECT size FROM rstb_sizes WHERE canonical_name = ?`, canonicalName).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("cachedb: query rstb size: %w", err)
	}
	return size, nil
}
