package fingerprint

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/substantialcattle5/deduce/internal/cache"
	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/internal/logger"
	"github.com/substantialcattle5/deduce/internal/progress"
	"github.com/substantialcattle5/deduce/internal/scan"
)

// maxCachePutFailures is how many consecutive cache write failures are
// tolerated before writes are disabled for the rest of the run.
const maxCachePutFailures = 3

// Key identifies a duplicate partition: files sharing both the exact
// byte size and the content fingerprint.
type Key struct {
	Size        int64
	Fingerprint uint64
}

// Partition maps each (size, fingerprint) pair to the files carrying it.
type Partition = map[Key][]scan.FileRecord

// Engine fingerprints candidate buckets on a bounded worker pool.
// Cache must be non nil; use a NopStore to run without caching.
type Engine struct {
	Fs        afero.Fs
	Cache     cache.Store
	Workers   int
	ChunkSize int
}

// Run fingerprints every file in buckets that shares its size with at
// least one other file. Cached fingerprints are reused while size and
// mtime still match. Unreadable or vanished files are recorded on the
// state and excluded. A cancelled run returns the partitions resolved
// so far without error.
func (e *Engine) Run(ctx context.Context, buckets scan.Buckets, state *progress.RunState) (Partition, error) {
	partitions := make(Partition)

	candidates := buckets.Candidates()
	if candidates.FileCount() == 0 {
		return partitions, nil
	}

	workers := e.Workers
	if workers < 1 {
		workers = config.DefaultWorkers()
	}
	if count := candidates.FileCount(); workers > count {
		workers = count
	}

	pool := newHashPool(workers, e.resolve(state))
	if err := pool.Start(); err != nil {
		return nil, err
	}

	logger.Get().Debug().
		Int("workers", workers).
		Int("files", candidates.FileCount()).
		Msg("fingerprinting candidates")

	var g errgroup.Group

	// Producer: feed every candidate file, stop early on cancellation.
	g.Go(func() error {
		defer pool.Close()
		for _, files := range candidates {
			for _, record := range files {
				if cancelled(ctx, state) {
					return nil
				}
				pool.Add(task{record: record})
			}
		}
		return nil
	})

	// Collector: the only writer of the partition map and the cache.
	g.Go(func() error {
		putFailures := 0
		writeDisabled := false

		for res := range pool.Results() {
			if res.err != nil {
				// Cancellation is not a file error.
				if !errors.Is(res.err, context.Canceled) {
					state.RecordError(res.record.Path, "fingerprint", res.err)
				}
				continue
			}

			key := Key{Size: res.record.Size, Fingerprint: res.fingerprint}
			partitions[key] = append(partitions[key], res.record)

			state.FilesFingerprinted.Add(1)
			if res.cached {
				state.CacheHits.Add(1)
				continue
			}
			state.BytesHashed.Add(res.bytes)

			if writeDisabled {
				continue
			}
			err := e.Cache.Put(cache.Entry{
				Path:        res.record.Path,
				Size:        res.record.Size,
				ModTime:     res.record.ModTime,
				Fingerprint: res.fingerprint,
				ComputedAt:  time.Now(),
			})
			if err != nil {
				putFailures++
				state.RecordError(res.record.Path, "cache", err)
				if putFailures >= maxCachePutFailures {
					writeDisabled = true
					logger.Get().Warn().Msg("cache writes disabled for the rest of the run")
				}
				continue
			}
			putFailures = 0
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partitions, nil
}

// resolve builds the per-file work function: cache consult first, then a
// streamed hash on miss or mismatch.
func (e *Engine) resolve(state *progress.RunState) func(task) result {
	return func(t task) result {
		record := t.record

		if state.Cancelled() {
			return result{record: record, err: context.Canceled}
		}

		if entry, ok := e.Cache.Get(record.Path); ok && entry.Matches(record.Size, record.ModTime) {
			return result{record: record, fingerprint: entry.Fingerprint, cached: true}
		}

		sum, n, err := Hash(e.Fs, record.Path, e.ChunkSize)
		if err != nil {
			return result{record: record, err: err}
		}
		return result{record: record, fingerprint: sum, bytes: n}
	}
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
