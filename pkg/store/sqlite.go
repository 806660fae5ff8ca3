package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	source TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	stats JSON NOT NULL,
	scene BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
`

// SQLiteStore keeps snapshots in a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	Path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, Path: path}, nil
}

// Save inserts or replaces a snapshot.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (id, name, source, created_at, stats, scene) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.Name, snap.Source, snap.CreatedAt.UnixMilli(), string(stats), snap.Scene)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load returns the snapshot with id.
func (s *SQLiteStore) Load(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, created_at, stats, scene FROM snapshots WHERE id = ?`, id.String())

	var (
		snap    Snapshot
		rawID   string
		created int64
		stats   string
	)
	err := row.Scan(&rawID, &snap.Name, &snap.Source, &created, &stats, &snap.Scene)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	if err := fill(&snap.ID, &snap.CreatedAt, &snap.Stats, rawID, created, stats); err != nil {
		return nil, err
	}
	return &snap, nil
}

// List returns the newest snapshots first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, created_at, stats FROM snapshots ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			rawID   string
			created int64
			stats   string
		)
		if err := rows.Scan(&rawID, &sum.Name, &sum.Source, &created, &stats); err != nil {
			return nil, err
		}
		if err := fill(&sum.ID, &sum.CreatedAt, &sum.Stats, rawID, created, stats); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the snapshot with id.
func (s *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fill(id *uuid.UUID, createdAt *time.Time, stats any, rawID string, created int64, rawStats string) error {
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("corrupt snapshot id %q: %w", rawID, err)
	}
	*id = parsed
	*createdAt = time.UnixMilli(created).UTC()
	if err := json.Unmarshal([]byte(rawStats), stats); err != nil {
		return fmt.Errorf("corrupt stats for %s: %w", rawID, err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
