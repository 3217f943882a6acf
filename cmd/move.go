/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/util"
)

// moveCmd represents the move command
var moveCmd = &cobra.Command{
	Use:   "move <directory> <target>",
	Short: "Move redundant copies into a quarantine directory",
	Long: `Scan a directory tree and move the redundant copies in every duplicate
group into a target directory. One file per group stays where it is;
name collisions in the target get a " (1)", " (2)" suffix.

Moving is the cautious alternative to delete: review the target
directory at leisure and remove it when you are sure.

Example:
  # Quarantine duplicate downloads
  deduce move ~/Downloads ~/duplicates

  # Only large archives
  deduce move --ext .zip --min-size 10MB /srv/backups /srv/quarantine`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags(cmd, args[:1])
		if err != nil {
			return err
		}

		opts.Action = config.ActionMove
		opts.TargetDir = args[1]

		manifestDir, err := manifestDirFromFlags(cmd)
		if err != nil {
			return err
		}
		opts.ManifestDir = manifestDir

		// Get confirmation unless --force is specified
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			prompt := fmt.Sprintf("This will move redundant copies from %s into %s. Continue?",
				args[0], args[1])
			confirmed, err := util.Confirm(prompt, os.Stdin, os.Stdout)
			if err != nil {
				return fmt.Errorf("confirmation failed: %v", err)
			}
			if !confirmed {
				fmt.Println("Operation cancelled")
				return nil
			}
		}

		result, runErr := runEngine(cmd, opts, "Moving duplicates")
		if result == nil {
			return runErr
		}
		reportRunIssues(cmd, result)

		if len(result.Groups) == 0 {
			fmt.Println("✓ No duplicates found, nothing to move")
			return runErr
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		moved := 0
		var movedBytes int64
		for _, outcome := range result.Outcomes {
			if outcome.Err != nil {
				continue
			}
			moved++
			movedBytes += outcome.Bytes
			if verbose {
				fmt.Printf("✓ Moved %s -> %s\n", outcome.Path, outcome.Dest)
			}
		}

		fmt.Printf("\n✓ Moved %d duplicate file(s) to %s, reclaiming %s in the source tree\n",
			moved, opts.TargetDir, util.HumanReadableSize(movedBytes))
		if result.ManifestPath != "" {
			fmt.Printf("📋 Run manifest: %s\n", result.ManifestPath)
		}

		return runErr
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)

	addEngineFlags(moveCmd)
	addManifestFlags(moveCmd)
	moveCmd.Flags().BoolP("force", "f", false, "Move without confirmation")
}
