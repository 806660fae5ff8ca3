// Package store persists laid-out scenes as named snapshots.
//
// A [Snapshot] bundles the scene JSON with the tree statistics and the
// source it came from, so a city can be reopened or served later without
// re-fetching and re-laying out its input. [SQLiteStore] keeps snapshots in
// a local file; [MongoStore] shares them through MongoDB.
package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/codecity/pkg/config"
	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Snapshot is a stored scene.
type Snapshot struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"createdAt"`
	Stats     tree.Stats `json:"stats"`
	Scene     []byte     `json:"scene,omitempty"`
}

// Summary is a snapshot without its scene payload.
type Summary struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"createdAt"`
	Stats     tree.Stats `json:"stats"`
}

// NewSnapshot encodes sc and stamps a fresh time-ordered ID.
func NewSnapshot(name, source string, root *tree.Node, sc *scene.Scene) (*Snapshot, error) {
	data, err := scene.Marshal(sc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode scene")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "generate snapshot id")
	}
	if name == "" {
		name = source
	}
	return &Snapshot{
		ID:        id,
		Name:      name,
		Source:    source,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Stats:     tree.ComputeStats(root),
		Scene:     data,
	}, nil
}

// Summary drops the scene payload.
func (s *Snapshot) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Source: s.Source, CreatedAt: s.CreatedAt, Stats: s.Stats}
}

// Decode parses the stored scene.
func (s *Snapshot) Decode() (*scene.Scene, error) {
	sc, err := scene.Unmarshal(s.Scene)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode snapshot %s", s.ID)
	}
	return sc, nil
}

// Store saves and loads snapshots. Load and Delete return a
// SNAPSHOT_NOT_FOUND error for unknown IDs.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]Summary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// DefaultListLimit caps List when limit is not positive.
const DefaultListLimit = 50

// ParseID parses a snapshot ID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid snapshot id %q", s)
	}
	return id, nil
}

func notFound(id uuid.UUID) error {
	return errs.New(errs.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
}

// DefaultSQLitePath returns $XDG_DATA_HOME/codecity/snapshots.db, falling
// back to ~/.local/share.
func DefaultSQLitePath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "codecity", "snapshots.db"), nil
}

// Open opens the backend selected by cfg.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StoreSQLite, "":
		path := cfg.SQLitePath
		if path == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(path)
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
}
