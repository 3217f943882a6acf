/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/internal/engine"
	"github.com/substantialcattle5/deduce/internal/progress"
	"github.com/substantialcattle5/deduce/util"
)

// addEngineFlags registers the flags shared by every command that runs
// the duplicate pipeline.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("ext", "", "Only consider files with this extension (e.g. .jpg)")
	cmd.Flags().String("min-size", "", "Ignore files smaller than this size (e.g. 512KB, 2MB)")
	cmd.Flags().Int("workers", 0, "Fingerprint worker count (default: CPU count)")
	cmd.Flags().String("cache", "", "Fingerprint cache path (default: ~/.cache/deduce)")
	cmd.Flags().String("cache-backend", "", "Cache backend: json, sqlite or none")
	cmd.Flags().Bool("no-cache", false, "Disable the fingerprint cache for this run")
}

// addManifestFlags registers the audit manifest flags used by commands
// that modify the filesystem.
func addManifestFlags(cmd *cobra.Command) {
	cmd.Flags().String("manifest-dir", "", "Directory for run manifests (default: ~/.cache/deduce/runs)")
	cmd.Flags().Bool("no-manifest", false, "Skip writing the run manifest")
}

// optionsFromFlags builds the engine options for the given roots,
// merging command line flags over config file defaults.
func optionsFromFlags(cmd *cobra.Command, roots []string) (config.Options, error) {
	opts := config.Options{Roots: roots}

	ext, _ := cmd.Flags().GetString("ext")
	if ext == "" {
		ext = fileCfg.Extension
	}
	opts.Extension = ext

	minSize, _ := cmd.Flags().GetString("min-size")
	if minSize == "" {
		minSize = fileCfg.MinSize
	}
	if minSize != "" {
		sizeBytes, err := util.ParseSize(minSize)
		if err != nil {
			return opts, fmt.Errorf("invalid minimum size: %v", err)
		}
		opts.MinSize = sizeBytes
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = fileCfg.Workers
	}
	opts.Workers = workers

	cachePath, _ := cmd.Flags().GetString("cache")
	if cachePath == "" {
		cachePath = fileCfg.CachePath
	}
	if cachePath != "" {
		expanded, err := util.ExpandPath(cachePath)
		if err != nil {
			return opts, fmt.Errorf("invalid cache path: %v", err)
		}
		cachePath = expanded
	}
	opts.CachePath = cachePath

	backend, _ := cmd.Flags().GetString("cache-backend")
	if backend == "" {
		backend = fileCfg.CacheBackend
	}
	opts.CacheBackend = config.Backend(backend)
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		opts.CacheBackend = config.BackendNone
	}

	return opts, nil
}

// manifestDirFromFlags resolves where the run manifest should go. An
// empty return means manifests are disabled for this run.
func manifestDirFromFlags(cmd *cobra.Command) (string, error) {
	if noManifest, _ := cmd.Flags().GetBool("no-manifest"); noManifest {
		return "", nil
	}

	dir, _ := cmd.Flags().GetString("manifest-dir")
	if dir == "" {
		dir = fileCfg.ManifestDir
	}
	if dir == "" {
		dir = filepath.Join(config.DefaultCacheDir(), "runs")
	}

	expanded, err := util.ExpandPath(dir)
	if err != nil {
		return "", fmt.Errorf("invalid manifest directory: %v", err)
	}
	return expanded, nil
}

// runEngine executes one duplicate run with progress feedback and
// signal based cancellation. The result can be non nil alongside an
// error when the run itself finished but the manifest write failed.
func runEngine(cmd *cobra.Command, opts config.Options, description string) (*engine.Result, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	eng, err := engine.New(opts)
	if err != nil {
		return nil, err
	}

	progressMgr := progress.NewManager(progress.Options{Quiet: quiet, Verbose: verbose})
	ctx := progressMgr.SetupCancellation(context.Background())
	defer progressMgr.Cleanup()

	progressMgr.StartPhase(-1, description)

	pollDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-pollDone:
				return
			case <-ticker.C:
				snap := eng.State().Snapshot()
				progressMgr.SetCurrent(snap.FilesScanned + snap.FilesFingerprinted + snap.FilesActioned)
			}
		}
	}()

	result, err := eng.Run(ctx)
	close(pollDone)
	progressMgr.FinishPhase()

	return result, err
}

// reportRunIssues prints the non fatal problems of a finished run:
// cancellation and per file errors. Neither fails the command.
func reportRunIssues(cmd *cobra.Command, result *engine.Result) {
	if result == nil {
		return
	}

	if result.Status == progress.StatusCancelled {
		fmt.Println("⚠️  Run cancelled, results below are partial")
	}

	if len(result.Errors) > 0 {
		fmt.Printf("⚠️  Skipped %d file(s) due to errors\n", len(result.Errors))
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			for _, fileErr := range result.Errors {
				fmt.Printf("   ✗ %s: %s\n", fileErr.Path, fileErr.Message)
			}
		}
	}
}
