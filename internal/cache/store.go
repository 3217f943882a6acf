// Package cache persists content fingerprints between runs so unchanged
// files are never hashed twice.
package cache

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/config"
)

// Entry is one cached fingerprint, keyed by absolute path. It is valid
// only while the file's size and modification time still match.
type Entry struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Fingerprint uint64    `json:"fingerprint"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Matches reports whether the entry still describes a file with the
// given size and modification time. Any mismatch means the fingerprint
// must be recomputed.
func (e Entry) Matches(size int64, modTime time.Time) bool {
	return e.Size == size && e.ModTime.UnixNano() == modTime.UnixNano()
}

// Store is the persistence contract for fingerprints. Implementations
// must be safe for concurrent use by the fingerprint workers.
type Store interface {
	// Get returns the entry for an absolute path, if present.
	Get(path string) (Entry, bool)
	// Put inserts or replaces the entry for its path.
	Put(entry Entry) error
	// Delete removes the entry for a path. Missing paths are not an error.
	Delete(path string) error
	// Len returns the number of cached fingerprints.
	Len() int
	// Clear drops every entry.
	Clear() error
	// Prune removes entries whose file no longer exists and returns how
	// many were dropped.
	Prune(fsys afero.Fs) (int, error)
	// Flush persists pending changes for backends that buffer writes.
	Flush() error
	// Close flushes anything pending and releases the store.
	Close() error
}

// DefaultPath returns the cache file location for a backend when none is
// configured.
func DefaultPath(backend config.Backend) string {
	dir := config.DefaultCacheDir()
	if backend == config.BackendSQLite {
		return filepath.Join(dir, "fingerprints.db")
	}
	return filepath.Join(dir, "fingerprints.json")
}

// Open builds the store for the configured backend. Callers treat an
// error as a degraded run (no cache), never as a fatal failure.
func Open(fsys afero.Fs, backend config.Backend, path string) (Store, error) {
	if path == "" {
		path = DefaultPath(backend)
	}

	switch backend {
	case config.BackendNone:
		return NewNopStore(), nil
	case config.BackendSQLite:
		return NewSQLStore(path)
	default:
		return NewFileStore(fsys, path), nil
	}
}
