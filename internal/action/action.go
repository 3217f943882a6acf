// Package action applies the chosen action to duplicate groups. Every
// group keeps its survivor; only the redundant copies are deleted, moved,
// or reported. Failures are per file and never stop the run.
package action

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/internal/constants"
	"github.com/substantialcattle5/deduce/internal/duplicates"
	"github.com/substantialcattle5/deduce/internal/progress"
)

// Outcome records what happened to one redundant file.
type Outcome struct {
	GroupID int
	Path    string
	Op      string
	Dest    string
	Bytes   int64
	Err     error
}

const (
	OpDelete   = "delete"
	OpMove     = "move"
	OpSimulate = "simulate"
)

// Executor applies actions through an afero filesystem so tests can run
// against an in-memory tree.
type Executor struct {
	Fs    afero.Fs
	State *progress.RunState
}

// Apply runs the action over every redundant file. ActionFind is a no-op,
// the groups themselves are the result. The returned outcomes cover every
// file processed before completion or cancellation, in group order.
func (e *Executor) Apply(ctx context.Context, act config.Action, groups []duplicates.Group, targetDir string) []Outcome {
	switch act {
	case config.ActionFind:
		return nil
	case config.ActionDelete:
		return e.applyDelete(ctx, groups, false)
	case config.ActionSimulate:
		return e.applyDelete(ctx, groups, true)
	case config.ActionMove:
		return e.applyMove(ctx, groups, targetDir)
	default:
		return nil
	}
}

// applyDelete handles both delete and simulate. Simulate walks the exact
// same files in the exact same order and only skips the Remove call, so
// its preview always matches what delete would do.
func (e *Executor) applyDelete(ctx context.Context, groups []duplicates.Group, dryRun bool) []Outcome {
	outcomes := make([]Outcome, 0, duplicates.TotalRedundant(groups))

	for _, group := range groups {
		for _, file := range group.Redundant() {
			if e.cancelled(ctx) {
				return outcomes
			}

			out := Outcome{GroupID: group.ID, Path: file.Path, Op: OpDelete, Bytes: file.Size}
			if dryRun {
				out.Op = OpSimulate
				outcomes = append(outcomes, out)
				e.State.FilesActioned.Add(1)
				continue
			}

			if err := e.Fs.Remove(file.Path); err != nil {
				out.Err = fmt.Errorf("remove %s: %w", file.Path, err)
				e.State.RecordError(file.Path, OpDelete, err)
			} else {
				e.State.FilesActioned.Add(1)
				e.State.BytesFreed.Add(file.Size)
			}
			outcomes = append(outcomes, out)
		}
	}

	return outcomes
}

func (e *Executor) applyMove(ctx context.Context, groups []duplicates.Group, targetDir string) []Outcome {
	outcomes := make([]Outcome, 0, duplicates.TotalRedundant(groups))

	if err := e.Fs.MkdirAll(targetDir, constants.StandardDirPerms); err != nil {
		// Without a target directory no file can move; report the
		// failure once per file so the manifest stays complete.
		for _, group := range groups {
			for _, file := range group.Redundant() {
				wrapped := fmt.Errorf("create target dir %s: %w", targetDir, err)
				outcomes = append(outcomes, Outcome{GroupID: group.ID, Path: file.Path, Op: OpMove, Bytes: file.Size, Err: wrapped})
				e.State.RecordError(file.Path, OpMove, wrapped)
			}
		}
		return outcomes
	}

	for _, group := range groups {
		for _, file := range group.Redundant() {
			if e.cancelled(ctx) {
				return outcomes
			}

			dest := e.destName(targetDir, filepath.Base(file.Path))
			out := Outcome{GroupID: group.ID, Path: file.Path, Op: OpMove, Dest: dest, Bytes: file.Size}

			if err := e.moveFile(file.Path, dest); err != nil {
				out.Err = err
				e.State.RecordError(file.Path, OpMove, err)
			} else {
				e.State.FilesActioned.Add(1)
				e.State.BytesFreed.Add(file.Size)
			}
			outcomes = append(outcomes, out)
		}
	}

	return outcomes
}

// destName resolves base-name collisions inside the target directory by
// appending " (N)" before the extension, counting up until a free name.
func (e *Executor) destName(targetDir, base string) string {
	dest := filepath.Join(targetDir, base)
	if _, err := e.Fs.Stat(dest); err != nil {
		return dest
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(targetDir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := e.Fs.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// moveFile renames when possible and falls back to copy for targets on
// another device. The copy goes to a temp name first so a torn write never
// leaves a half file under the final name, and the source survives any
// copy failure.
func (e *Executor) moveFile(src, dest string) error {
	if err := e.Fs.Rename(src, dest); err == nil {
		return nil
	}

	tmp := dest + ".part"
	if err := e.copyFile(src, tmp); err != nil {
		_ = e.Fs.Remove(tmp)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := e.Fs.Rename(tmp, dest); err != nil {
		_ = e.Fs.Remove(tmp)
		return fmt.Errorf("promote %s: %w", dest, err)
	}
	if err := e.Fs.Remove(src); err != nil {
		return fmt.Errorf("remove source %s: %w", src, err)
	}
	return nil
}

func (e *Executor) copyFile(src, dest string) error {
	in, err := e.Fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := e.Fs.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (e *Executor) cancelled(ctx context.Context) bool {
	if e.State.Cancelled() {
		return true
	}
	select {
	case <-ctx.Done():
		e.State.Cancel()
		return true
	default:
		return false
	}
}
