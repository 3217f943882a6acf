// Package scan walks directory trees and buckets candidate files by size.
package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/logger"
	"github.com/substantialcattle5/deduce/internal/progress"
)

// FileRecord describes one regular file seen during the walk.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Filter restricts which files become duplicate candidates.
type Filter struct {
	// Extension is the normalized extension filter (".txt").
	// Empty matches every extension.
	Extension string
	// MinSize excludes files strictly smaller, in bytes.
	MinSize int64
}

// Match reports whether a file passes the filter.
func (f Filter) Match(path string, size int64) bool {
	if size < f.MinSize {
		return false
	}
	if f.Extension != "" && strings.ToLower(filepath.Ext(path)) != f.Extension {
		return false
	}
	return true
}

// Buckets groups candidate files by exact byte size.
type Buckets map[int64][]FileRecord

// Candidates returns only the sizes shared by at least two files. Sizes
// held by a single file cannot contain duplicates.
func (b Buckets) Candidates() Buckets {
	out := make(Buckets)
	for size, files := range b {
		if len(files) >= 2 {
			out[size] = files
		}
	}
	return out
}

// FileCount returns the number of files across all buckets.
func (b Buckets) FileCount() int {
	count := 0
	for _, files := range b {
		count += len(files)
	}
	return count
}

// Stats carries the traversal figures for the run report.
type Stats struct {
	TotalFiles      int
	TotalDirs       int
	CandidateFiles  int
	UniqueSizeFiles int
}

// Scanner walks roots against a filesystem. Tests swap in a MemMapFs.
type Scanner struct {
	Fs afero.Fs
}

// NewScanner creates a scanner on the given filesystem.
func NewScanner(fs afero.Fs) *Scanner {
	return &Scanner{Fs: fs}
}

var errWalkStopped = errors.New("walk stopped")

// Scan walks every root, applies the filter, and buckets matching files
// by size. Files reachable through more than one root are recorded once.
// Unreadable entries are recorded on the run state and skipped; symlinks
// are never followed. When the run is cancelled mid walk the buckets
// accumulated so far are returned without error.
func (s *Scanner) Scan(ctx context.Context, roots []string, filter Filter, state *progress.RunState) (Buckets, Stats, error) {
	buckets := make(Buckets)
	stats := Stats{}
	seen := make(map[string]struct{})

	for _, root := range roots {
		if cancelled(ctx, state) {
			break
		}

		err := afero.Walk(s.Fs, root, func(path string, info os.FileInfo, err error) error {
			if cancelled(ctx, state) {
				return errWalkStopped
			}
			if err != nil {
				logger.Get().Debug().Err(err).Str("path", path).Msg("unreadable entry, skipping")
				state.RecordError(path, "scan", err)
				return nil
			}

			// Symlinks are skipped entirely, directories included.
			if info.Mode()&os.ModeSymlink != 0 {
				return nil
			}

			if info.IsDir() {
				if path != root {
					stats.TotalDirs++
					state.DirsScanned.Add(1)
				}
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				state.RecordError(path, "scan", absErr)
				return nil
			}
			if _, dup := seen[abs]; dup {
				return nil
			}
			seen[abs] = struct{}{}

			stats.TotalFiles++
			state.FilesScanned.Add(1)

			if !filter.Match(path, info.Size()) {
				return nil
			}

			buckets[info.Size()] = append(buckets[info.Size()], FileRecord{
				Path:    abs,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
			return nil
		})
		if err != nil && !errors.Is(err, errWalkStopped) {
			state.RecordError(root, "scan", err)
		}
	}

	// Deterministic member order regardless of walk interleaving.
	for size := range buckets {
		files := buckets[size]
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		buckets[size] = files
	}

	for _, files := range buckets {
		stats.CandidateFiles += len(files)
		if len(files) == 1 {
			stats.UniqueSizeFiles++
		}
	}

	return buckets, stats, nil
}

func cancelled(ctx context.Context, state *progress.RunState) bool {
	if state.Cancelled() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
