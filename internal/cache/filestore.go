package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/atomic"
	"github.com/substantialcattle5/deduce/internal/constants"
	"github.com/substantialcattle5/deduce/internal/logger"
)

// FileStore keeps the fingerprint index in memory and persists it as an
// indented JSON file on Flush. Writes mark the store dirty; Flush is a
// no-op while nothing changed.
type FileStore struct {
	fs      afero.Fs
	path    string
	mutex   sync.RWMutex
	entries map[string]Entry
	dirty   bool
}

// NewFileStore opens the JSON store at path. A missing, corrupt or
// unreadable file is a cold start, never a failure.
func NewFileStore(fsys afero.Fs, path string) *FileStore {
	store := &FileStore{
		fs:      fsys,
		path:    path,
		entries: make(map[string]Entry),
	}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Get().Warn().Err(err).Str("path", path).Msg("fingerprint cache unreadable, starting cold")
		}
		store.entries = make(map[string]Entry)
	}

	return store
}

func (s *FileStore) load() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.entries)
}

// Get returns the entry for an absolute path, if present.
func (s *FileStore) Get(path string) (Entry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.entries[path]
	return entry, exists
}

// Put inserts or replaces the entry for its path.
func (s *FileStore) Put(entry Entry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[entry.Path] = entry
	s.dirty = true
	return nil
}

// Delete removes the entry for a path.
func (s *FileStore) Delete(path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.entries[path]; exists {
		delete(s.entries, path)
		s.dirty = true
	}
	return nil
}

// Len returns the number of cached fingerprints.
func (s *FileStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entries)
}

// Clear drops every entry.
func (s *FileStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) > 0 {
		s.entries = make(map[string]Entry)
		s.dirty = true
	}
	return nil
}

// Prune removes entries whose file no longer exists.
func (s *FileStore) Prune(fsys afero.Fs) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var toRemove []string
	for path := range s.entries {
		if _, err := fsys.Stat(path); os.IsNotExist(err) {
			toRemove = append(toRemove, path)
		}
	}

	for _, path := range toRemove {
		delete(s.entries, path)
	}
	if len(toRemove) > 0 {
		s.dirty = true
	}

	return len(toRemove), nil
}

// Flush writes the index to disk if anything changed since the last
// flush. The file is replaced atomically so a crash never leaves a
// truncated index.
func (s *FileStore) Flush() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.dirty {
		return nil // No changes to save
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := atomic.WriteFile(s.fs, s.path, data, constants.StandardFilePerms); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	s.dirty = false
	return nil
}

// Close flushes pending changes and releases the store.
func (s *FileStore) Close() error {
	return s.Flush()
}
