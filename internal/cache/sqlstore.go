package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/substantialcattle5/deduce/internal/constants"
	"github.com/substantialcattle5/deduce/internal/logger"
)

// sqlEntry is the gorm row model. Timestamps are unix nanoseconds and
// the fingerprint is bit cast to int64 because SQLite integers are
// signed.
type sqlEntry struct {
	Path        string `gorm:"primaryKey;column:path"`
	Size        int64  `gorm:"column:size"`
	ModTimeNs   int64  `gorm:"column:mod_time_ns"`
	Fingerprint int64  `gorm:"column:fingerprint"`
	ComputedAt  int64  `gorm:"column:computed_at"`
}

func (sqlEntry) TableName() string {
	return "fingerprints"
}

func (r sqlEntry) toEntry() Entry {
	return Entry{
		Path:        r.Path,
		Size:        r.Size,
		ModTime:     time.Unix(0, r.ModTimeNs),
		Fingerprint: uint64(r.Fingerprint),
		ComputedAt:  time.Unix(0, r.ComputedAt),
	}
}

func toRow(e Entry) sqlEntry {
	return sqlEntry{
		Path:        e.Path,
		Size:        e.Size,
		ModTimeNs:   e.ModTime.UnixNano(),
		Fingerprint: int64(e.Fingerprint),
		ComputedAt:  e.ComputedAt.UnixNano(),
	}
}

// SQLStore keeps fingerprints in a SQLite database. Writes go straight
// to the database, so Flush has nothing to do.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the database at path with WAL enabled
// and a single connection, the safe configuration for SQLite under
// concurrent writers.
func NewSQLStore(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.StandardDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access cache database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&sqlEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Get returns the entry for an absolute path, if present.
func (s *SQLStore) Get(path string) (Entry, bool) {
	var row sqlEntry
	result := s.db.First(&row, "path = ?", path)
	if result.Error != nil {
		return Entry{}, false
	}
	return row.toEntry(), true
}

// Put inserts or replaces the entry for its path.
func (s *SQLStore) Put(entry Entry) error {
	row := toRow(entry)
	result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to store fingerprint for %s: %w", entry.Path, result.Error)
	}
	return nil
}

// Delete removes the entry for a path.
func (s *SQLStore) Delete(path string) error {
	result := s.db.Delete(&sqlEntry{}, "path = ?", path)
	if result.Error != nil {
		return fmt.Errorf("failed to delete fingerprint for %s: %w", path, result.Error)
	}
	return nil
}

// Len returns the number of cached fingerprints.
func (s *SQLStore) Len() int {
	var count int64
	if err := s.db.Model(&sqlEntry{}).Count(&count).Error; err != nil {
		logger.Get().Warn().Err(err).Msg("cache count failed")
		return 0
	}
	return int(count)
}

// Clear drops every entry.
func (s *SQLStore) Clear() error {
	result := s.db.Where("1 = 1").Delete(&sqlEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear cache: %w", result.Error)
	}
	return nil
}

// Prune removes entries whose file no longer exists.
func (s *SQLStore) Prune(fsys afero.Fs) (int, error) {
	var paths []string
	if err := s.db.Model(&sqlEntry{}).Pluck("path", &paths).Error; err != nil {
		return 0, fmt.Errorf("failed to list cache paths: %w", err)
	}

	pruned := 0
	for _, path := range paths {
		if _, err := fsys.Stat(path); os.IsNotExist(err) {
			if err := s.Delete(path); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

// Flush is a no-op, writes are not buffered.
func (s *SQLStore) Flush() error {
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
