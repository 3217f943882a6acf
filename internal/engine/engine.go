// Package engine runs the full duplicate pipeline: scan, fingerprint,
// group, act, report. One Engine value runs once; build a new one for the
// next run so counters and run identity start fresh.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/action"
	"github.com/substantialcattle5/deduce/internal/cache"
	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/internal/duplicates"
	"github.com/substantialcattle5/deduce/internal/fingerprint"
	"github.com/substantialcattle5/deduce/internal/logger"
	"github.com/substantialcattle5/deduce/internal/manifest"
	"github.com/substantialcattle5/deduce/internal/progress"
	"github.com/substantialcattle5/deduce/internal/report"
	"github.com/substantialcattle5/deduce/internal/scan"
)

// ErrConfig marks fatal configuration failures, reported before the scan
// starts. Everything after that point degrades or is recorded per file.
var ErrConfig = config.ErrInvalid

// Result is everything a finished run produced.
type Result struct {
	RunID        string
	Status       progress.Status
	Groups       []duplicates.Group
	Outcomes     []action.Outcome
	Report       report.Report
	Errors       []progress.FileError
	Stats        scan.Stats
	Counters     progress.Snapshot
	Duration     time.Duration
	ManifestPath string
}

// Engine wires the pipeline phases over one filesystem and one run state.
type Engine struct {
	opts  config.Options
	fs    afero.Fs
	state *progress.RunState
	ran   atomic.Bool
}

// New builds an engine for the host filesystem.
func New(opts config.Options) (*Engine, error) {
	return NewWithFs(opts, afero.NewOsFs())
}

// NewWithFs builds an engine on the given filesystem. Options are
// normalized and validated here so a bad configuration never reaches the
// scan phase.
func NewWithFs(opts config.Options, fsys afero.Fs) (*Engine, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:  opts,
		fs:    fsys,
		state: progress.NewRunState(),
	}, nil
}

// State returns the live run state for progress polling.
func (e *Engine) State() *progress.RunState {
	return e.state
}

// Cancel stops the run at the next per file checkpoint.
func (e *Engine) Cancel() {
	e.state.Cancel()
}

// Options returns the normalized options the engine runs with.
func (e *Engine) Options() config.Options {
	return e.opts
}

// Run executes the pipeline. Per file failures never abort the run; they
// land in Result.Errors. A cancelled run returns what it had with
// Status cancelled and no error. A non nil error means configuration
// failed or, after a completed action phase, the audit manifest could not
// be written; in the manifest case the Result is returned alongside the
// error so outcomes are not lost.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if !e.ran.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("engine already ran; build a new one")
	}

	log := logger.Get()
	started := time.Now()

	for _, root := range e.opts.Roots {
		info, err := e.fs.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q: %v", ErrConfig, root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: root %q is not a directory", ErrConfig, root)
		}
	}

	// External context cancellation and Engine.Cancel converge on the
	// same run state flag.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			e.state.Cancel()
		case <-watchDone:
		}
	}()

	store := e.openCache()
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("closing fingerprint cache failed")
		}
	}()

	log.Info().
		Str("run_id", e.state.RunID).
		Str("action", string(e.opts.Action)).
		Strs("roots", e.opts.Roots).
		Msg("scan phase started")

	scanner := scan.NewScanner(e.fs)
	filter := scan.Filter{Extension: e.opts.Extension, MinSize: e.opts.MinSize}
	buckets, stats, err := scanner.Scan(ctx, e.opts.Roots, filter, e.state)
	if err != nil {
		return nil, fmt.Errorf("scan phase: %w", err)
	}

	log.Info().
		Int("files", stats.TotalFiles).
		Int("candidates", stats.CandidateFiles).
		Msg("fingerprint phase started")

	fp := &fingerprint.Engine{
		Fs:        e.fs,
		Cache:     store,
		Workers:   e.opts.Workers,
		ChunkSize: e.opts.ChunkSize,
	}
	partitions, err := fp.Run(ctx, buckets, e.state)
	if err != nil {
		return nil, fmt.Errorf("fingerprint phase: %w", err)
	}

	groups := duplicates.GroupAll(partitions)
	e.state.DuplicatesFound.Add(int64(duplicates.TotalRedundant(groups)))
	e.state.BytesReclaimable.Add(duplicates.TotalWasted(groups))

	var outcomes []action.Outcome
	if e.opts.Action != config.ActionFind && !e.state.Cancelled() {
		log.Info().
			Str("action", string(e.opts.Action)).
			Int("groups", len(groups)).
			Msg("action phase started")

		executor := &action.Executor{Fs: e.fs, State: e.state}
		outcomes = executor.Apply(ctx, e.opts.Action, groups, e.opts.TargetDir)
	}

	// The watcher goroutine may not have observed a late cancellation
	// yet; settle it before the status decision.
	select {
	case <-ctx.Done():
		e.state.Cancel()
	default:
	}

	if e.state.Cancelled() {
		e.state.SetStatus(progress.StatusCancelled)
	} else {
		e.state.SetStatus(progress.StatusCompleted)
	}

	result := &Result{
		RunID:    e.state.RunID,
		Status:   e.state.Status(),
		Groups:   groups,
		Outcomes: outcomes,
		Report:   report.Build(groups, stats),
		Errors:   e.state.Errors(),
		Stats:    stats,
		Counters: e.state.Snapshot(),
		Duration: time.Since(started),
	}

	log.Info().
		Str("status", string(result.Status)).
		Int("groups", len(groups)).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("run finished")

	if e.opts.ManifestDir != "" {
		path, err := manifest.Write(e.fs, e.opts.ManifestDir, e.buildManifest(result, started))
		if err != nil {
			return result, fmt.Errorf("writing run manifest: %w", err)
		}
		result.ManifestPath = path
	}

	return result, nil
}

// openCache never fails the run: a broken cache means hashing without one.
func (e *Engine) openCache() cache.Store {
	store, err := cache.Open(e.fs, e.opts.CacheBackend, e.opts.CachePath)
	if err != nil {
		logger.Get().Warn().Err(err).
			Str("backend", string(e.opts.CacheBackend)).
			Msg("fingerprint cache unavailable, continuing without")
		return cache.NewNopStore()
	}
	return store
}

func (e *Engine) buildManifest(result *Result, started time.Time) *manifest.RunManifest {
	snap := e.state.Snapshot()
	return &manifest.RunManifest{
		RunID:     result.RunID,
		Action:    string(e.opts.Action),
		Roots:     e.opts.Roots,
		TargetDir: e.opts.TargetDir,
		Filters: manifest.Filters{
			Extension: e.opts.Extension,
			MinSize:   e.opts.MinSize,
		},
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Status:     result.Status,
		Stats: manifest.Stats{
			FilesScanned:       snap.FilesScanned,
			DirsScanned:        snap.DirsScanned,
			FilesFingerprinted: snap.FilesFingerprinted,
			CacheHits:          snap.CacheHits,
			BytesHashed:        snap.BytesHashed,
			DuplicateGroups:    len(result.Groups),
			RedundantFiles:     result.Report.DuplicateFiles,
			ReclaimableBytes:   result.Report.ReclaimableBytes,
			FilesActioned:      snap.FilesActioned,
			BytesFreed:         snap.BytesFreed,
		},
		Outcomes: manifest.FromOutcomes(result.Outcomes),
		Errors:   result.Errors,
	}
}
