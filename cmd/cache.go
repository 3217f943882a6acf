/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/cache"
	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/util"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fingerprint cache",
	Long: `Manage the persistent fingerprint cache.

The cache stores one content fingerprint per file, keyed by absolute
path, and is reused across runs for files whose size and modification
time have not changed. Stale entries are harmless but take up space.

This command provides subcommands for:
- Showing cache statistics
- Clearing the cache completely
- Pruning entries for files that no longer exist

Example:
  deduce cache stats   # Show cache statistics
  deduce cache clear   # Drop every cached fingerprint
  deduce cache prune   # Drop entries for deleted files
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// cacheStatsCmd shows cache statistics
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fingerprint cache statistics",
	Long: `Display statistics about the fingerprint cache.

This includes:
- The backend and file location
- Number of cached fingerprints
- Size of the cache on disk

Example:
  deduce cache stats
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, backend, path, err := openCacheStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("\nFingerprint Cache:\n")
		fmt.Printf("==================\n")
		fmt.Printf("Backend: %s\n", backend)
		fmt.Printf("Path: %s\n", path)
		fmt.Printf("Entries: %d\n", store.Len())

		if info, err := os.Stat(path); err == nil {
			fmt.Printf("Size on disk: %s\n", util.HumanReadableSize(info.Size()))
		}

		if store.Len() > 0 {
			fmt.Println("\n💡 Run 'deduce cache prune' to drop entries for files that no longer exist.")
		}

		return nil
	},
}

// cacheClearCmd drops every cached fingerprint
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached fingerprint",
	Long: `Remove all entries from the fingerprint cache.

The next run will hash every candidate file from scratch. This never
touches the scanned files themselves.

Example:
  deduce cache clear
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, path, err := openCacheStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries := store.Len()
		if entries == 0 {
			fmt.Println("✓ Cache is already empty")
			return nil
		}

		fmt.Printf("This will drop %d cached fingerprints from %s.\n", entries, path)
		confirmPrompt := promptui.Prompt{
			Label:     "Continue",
			IsConfirm: true,
			Default:   "y",
		}
		if _, err := confirmPrompt.Run(); err != nil {
			if err == promptui.ErrAbort {
				fmt.Println("Operation cancelled")
				return nil
			}
			return fmt.Errorf("confirmation failed: %v", err)
		}

		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %v", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("failed to persist cache: %v", err)
		}

		fmt.Printf("✓ Cleared %d cached fingerprints\n", entries)
		return nil
	},
}

// cachePruneCmd drops entries for files that no longer exist
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cache entries for files that no longer exist",
	Long: `Remove cache entries whose file has been deleted or renamed.

Pruning keeps the cache small after large cleanups. Entries for files
that still exist are never touched.

Example:
  deduce cache prune
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, _, err := openCacheStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Println("Pruning cache entries for missing files...")

		removed, err := store.Prune(afero.NewOsFs())
		if err != nil {
			return fmt.Errorf("prune failed: %v", err)
		}
		remaining := store.Len()
		if err := store.Close(); err != nil {
			return fmt.Errorf("failed to persist cache: %v", err)
		}

		fmt.Printf("✓ Removed %d stale entries, %d remain\n", removed, remaining)
		return nil
	},
}

// openCacheStore resolves the cache location from flags and config file
// defaults and opens it. The none backend has nothing to manage.
func openCacheStore(cmd *cobra.Command) (cache.Store, config.Backend, string, error) {
	backendName, _ := cmd.Flags().GetString("cache-backend")
	if backendName == "" {
		backendName = fileCfg.CacheBackend
	}
	backend := config.Backend(backendName)
	if backend == "" {
		backend = config.BackendJSON
	}
	switch backend {
	case config.BackendJSON, config.BackendSQLite:
	case config.BackendNone:
		return nil, "", "", fmt.Errorf("cache backend is set to none, nothing to manage")
	default:
		return nil, "", "", fmt.Errorf("unknown cache backend %q", backend)
	}

	path, _ := cmd.Flags().GetString("cache")
	if path == "" {
		path = fileCfg.CachePath
	}
	if path == "" {
		path = cache.DefaultPath(backend)
	}
	expanded, err := util.ExpandPath(path)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid cache path: %v", err)
	}

	store, err := cache.Open(afero.NewOsFs(), backend, expanded)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to open cache: %v", err)
	}
	return store, backend, expanded, nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.PersistentFlags().String("cache", "", "Fingerprint cache path (default: ~/.cache/deduce)")
	cacheCmd.PersistentFlags().String("cache-backend", "", "Cache backend: json or sqlite")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
