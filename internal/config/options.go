package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrInvalid marks configuration errors. They are fatal and reported
// before any filesystem traversal starts.
var ErrInvalid = errors.New("invalid configuration")

// Action selects what a run does with the duplicate groups it finds.
type Action string

const (
	ActionFind     Action = "find"
	ActionDelete   Action = "delete"
	ActionSimulate Action = "simulate"
	ActionMove     Action = "move"
)

// Backend selects the fingerprint cache implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
	BackendNone   Backend = "none"
)

// DefaultChunkSize is the read buffer used when fingerprinting, 256 KiB.
const DefaultChunkSize = 256 * 1024

// MaxWorkers caps the fingerprint worker pool.
const MaxWorkers = 32

// Options is the full configuration for one engine run.
type Options struct {
	Roots     []string
	Action    Action
	TargetDir string

	Extension string
	MinSize   int64

	Workers   int
	ChunkSize int

	CachePath    string
	CacheBackend Backend

	ManifestDir string
}

// Normalize cleans paths and filter values in place. Roots and the move
// target become absolute, the extension filter becomes lowercase with a
// leading dot, and zero knobs get their defaults.
func (o *Options) Normalize() error {
	for i, root := range o.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("%w: resolving root %q: %v", ErrInvalid, root, err)
		}
		o.Roots[i] = abs
	}

	if o.TargetDir != "" {
		abs, err := filepath.Abs(o.TargetDir)
		if err != nil {
			return fmt.Errorf("%w: resolving target %q: %v", ErrInvalid, o.TargetDir, err)
		}
		o.TargetDir = abs
	}

	o.Extension = NormalizeExtension(o.Extension)

	if o.Action == "" {
		o.Action = ActionFind
	}
	if o.CacheBackend == "" {
		o.CacheBackend = BackendJSON
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return nil
}

// Validate checks the pure configuration invariants. Root existence is
// checked by the engine against its filesystem.
func (o *Options) Validate() error {
	if len(o.Roots) == 0 {
		return fmt.Errorf("%w: at least one root directory is required", ErrInvalid)
	}

	switch o.Action {
	case ActionFind, ActionDelete, ActionSimulate, ActionMove:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalid, o.Action)
	}

	if o.Action == ActionMove && o.TargetDir == "" {
		return fmt.Errorf("%w: move requires a target directory", ErrInvalid)
	}

	if o.MinSize < 0 {
		return fmt.Errorf("%w: min size cannot be negative", ErrInvalid)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: worker count must be at least 1", ErrInvalid)
	}
	if o.Workers > MaxWorkers {
		return fmt.Errorf("%w: worker count %d exceeds the maximum of %d", ErrInvalid, o.Workers, MaxWorkers)
	}

	switch o.CacheBackend {
	case BackendJSON, BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalid, o.CacheBackend)
	}

	return nil
}

// NormalizeExtension lowercases an extension filter and ensures the
// leading dot, so ".TXT", "txt" and ".txt" all match the same files.
// An empty filter matches every extension.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// DefaultWorkers picks a worker pool size from the machine, capped so a
// large core count does not thrash the disk.
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
