package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Store loads and persists the catalog document with single-writer locking.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store for the catalog at path. The lock file lives next
// to the catalog so every writer contends on the same inode.
func NewStore(path, lockPath string) *Store {
	return &Store{
		path: path,
		lock: flock.New(lockPath),
	}
}

// Path returns the catalog file location.
func (s *Store) Path() string { return s.path }

// Acquire takes the run-scoped exclusive lock. It fails fast rather than
// waiting: a second concurrent run is a configuration error, not a queue.
func (s *Store) Acquire() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return errors.New("another appbinhub run holds the catalog lock")
	}
	return nil
}

// Release drops the exclusive lock.
func (s *Store) Release() error {
	return s.lock.Unlock()
}

// Load reads the catalog document, returning an empty initialized catalog
// when the file does not exist yet.
func (s *Store) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Catalog{
				Metadata: Metadata{
					LastUpdated:   time.Now().UTC(),
					SchemaVersion: SchemaVersion,
				},
			}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}
	if cat.Metadata.SchemaVersion == "" {
		cat.Metadata.SchemaVersion = SchemaVersion
	}
	return &cat, nil
}

// Save writes the catalog atomically: marshal to a temp file in the same
// directory, then rename over the target. An interrupted run leaves the
// previous document intact and parseable.
func (s *Store) Save(cat *Catalog) error {
	if cat == nil {
		return errors.New("catalog is required")
	}

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".applications-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp catalog: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
