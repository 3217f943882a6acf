// Package manifest persists an audit record of every run: what was asked
// for, what was touched, and what failed.
package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/substantialcattle5/deduce/internal/action"
	"github.com/substantialcattle5/deduce/internal/atomic"
	"github.com/substantialcattle5/deduce/internal/constants"
	"github.com/substantialcattle5/deduce/internal/progress"
)

// OutcomeRecord is the serializable form of an action outcome.
type OutcomeRecord struct {
	GroupID int    `yaml:"group_id"`
	Path    string `yaml:"path"`
	Op      string `yaml:"op"`
	Dest    string `yaml:"dest,omitempty"`
	Bytes   int64  `yaml:"bytes"`
	Error   string `yaml:"error,omitempty"`
}

// Filters echoes the candidate filters the run was started with.
type Filters struct {
	Extension string `yaml:"extension,omitempty"`
	MinSize   int64  `yaml:"min_size,omitempty"`
}

// Stats carries the run counters into the manifest.
type Stats struct {
	FilesScanned       int64 `yaml:"files_scanned"`
	DirsScanned        int64 `yaml:"dirs_scanned"`
	FilesFingerprinted int64 `yaml:"files_fingerprinted"`
	CacheHits          int64 `yaml:"cache_hits"`
	BytesHashed        int64 `yaml:"bytes_hashed"`
	DuplicateGroups    int   `yaml:"duplicate_groups"`
	RedundantFiles     int   `yaml:"redundant_files"`
	ReclaimableBytes   int64 `yaml:"reclaimable_bytes"`
	FilesActioned      int64 `yaml:"files_actioned"`
	BytesFreed         int64 `yaml:"bytes_freed"`
}

// RunManifest is the YAML audit record written after a run.
type RunManifest struct {
	RunID      string               `yaml:"run_id"`
	Action     string               `yaml:"action"`
	Roots      []string             `yaml:"roots"`
	TargetDir  string               `yaml:"target_dir,omitempty"`
	Filters    Filters              `yaml:"filters"`
	StartedAt  time.Time            `yaml:"started_at"`
	FinishedAt time.Time            `yaml:"finished_at"`
	Status     progress.Status      `yaml:"status"`
	Stats      Stats                `yaml:"stats"`
	Outcomes   []OutcomeRecord      `yaml:"outcomes,omitempty"`
	Errors     []progress.FileError `yaml:"errors,omitempty"`
}

// FromOutcomes flattens outcomes into their serializable form.
func FromOutcomes(outcomes []action.Outcome) []OutcomeRecord {
	if len(outcomes) == 0 {
		return nil
	}
	records := make([]OutcomeRecord, 0, len(outcomes))
	for _, out := range outcomes {
		record := OutcomeRecord{
			GroupID: out.GroupID,
			Path:    out.Path,
			Op:      out.Op,
			Dest:    out.Dest,
			Bytes:   out.Bytes,
		}
		if out.Err != nil {
			record.Error = out.Err.Error()
		}
		records = append(records, record)
	}
	return records
}

// Write stores the manifest as <dir>/<run-id>.yaml and returns the path.
// The file lands atomically; an interrupted write never leaves a partial
// manifest under the final name.
func Write(fs afero.Fs, dir string, m *RunManifest) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, m.RunID+".yaml")
	if err := atomic.WriteFile(fs, path, buf.Bytes(), constants.StandardFilePerms); err != nil {
		return "", fmt.Errorf("failed to write manifest file: %w", err)
	}

	return path, nil
}

// Load reads a manifest back, for inspection and tests.
func Load(fs afero.Fs, path string) (*RunManifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &m, nil
}
