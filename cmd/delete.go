/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/action"
	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/util"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [directories...]",
	Short: "Delete redundant copies of duplicate files",
	Long: `Scan one or more directory trees and delete the redundant copies in
every duplicate group. One file per group always survives; the survivor
is the first file in path order and is never touched.

Deletions are recorded in a run manifest so there is an audit of what
was removed.

Example:
  # Review first, then delete
  deduce delete --dry-run ~/Downloads
  deduce delete ~/Downloads

  # Skip the confirmation prompt
  deduce delete --force --min-size 1MB /srv/media`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags(cmd, args)
		if err != nil {
			return err
		}

		opts.Action = config.ActionDelete
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			opts.Action = config.ActionSimulate
		}

		manifestDir, err := manifestDirFromFlags(cmd)
		if err != nil {
			return err
		}
		opts.ManifestDir = manifestDir

		// Get confirmation unless --force is specified
		force, _ := cmd.Flags().GetBool("force")
		if !dryRun && !force {
			prompt := fmt.Sprintf("This will permanently delete redundant copies under %s. Continue?",
				strings.Join(args, ", "))
			confirmed, err := util.Confirm(prompt, os.Stdin, os.Stdout)
			if err != nil {
				return fmt.Errorf("confirmation failed: %v", err)
			}
			if !confirmed {
				fmt.Println("Operation cancelled")
				return nil
			}
		}

		description := "Deleting duplicates"
		if dryRun {
			description = "Simulating delete"
		}
		result, runErr := runEngine(cmd, opts, description)
		if result == nil {
			return runErr
		}
		reportRunIssues(cmd, result)

		if len(result.Groups) == 0 {
			fmt.Println("✓ No duplicates found, nothing to delete")
			return runErr
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		acted := 0
		var freed int64
		for _, outcome := range result.Outcomes {
			if outcome.Err != nil {
				continue
			}
			acted++
			freed += outcome.Bytes
			if outcome.Op == action.OpSimulate {
				fmt.Printf("Would delete %s (%s)\n", outcome.Path, util.HumanReadableSize(outcome.Bytes))
			} else if verbose {
				fmt.Printf("✓ Deleted %s\n", outcome.Path)
			}
		}

		if dryRun {
			fmt.Printf("\n📋 Dry run: %d file(s) would be deleted, freeing %s\n",
				acted, util.HumanReadableSize(freed))
		} else {
			fmt.Printf("\n✓ Deleted %d duplicate file(s), freed %s\n",
				acted, util.HumanReadableSize(freed))
		}
		if result.ManifestPath != "" {
			fmt.Printf("📋 Run manifest: %s\n", result.ManifestPath)
		}

		return runErr
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	addEngineFlags(deleteCmd)
	addManifestFlags(deleteCmd)
	deleteCmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting anything")
	deleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
}
