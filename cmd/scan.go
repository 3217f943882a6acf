/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/duplicates"
	"github.com/substantialcattle5/deduce/internal/export"
	"github.com/substantialcattle5/deduce/util"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [directories...]",
	Short: "Find duplicate files without touching them",
	Long: `Scan one or more directory trees and list every group of files with
identical content. Nothing is modified; use the delete or move commands
to act on what scan finds.

Example:
  # Scan a photo library
  deduce scan ~/Pictures

  # Only consider large video files, across two disks
  deduce scan --ext .mp4 --min-size 50MB /mnt/disk1 /mnt/disk2

  # Export the groups for a spreadsheet
  deduce scan --csv duplicates.csv ~/Downloads`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags(cmd, args)
		if err != nil {
			return err
		}

		result, err := runEngine(cmd, opts, "Scanning for duplicates")
		if err != nil {
			return err
		}
		reportRunIssues(cmd, result)

		verbose, _ := cmd.Flags().GetBool("verbose")
		duplicates.DisplayGroups(result.Groups, verbose)
		duplicates.DisplaySummary(result.Groups)

		if verbose {
			fmt.Printf("\nScanned %d file(s) in %s (%d fingerprinted, %d cache hit(s), %s hashed)\n",
				result.Stats.TotalFiles, result.Duration.Round(time.Millisecond),
				result.Counters.FilesFingerprinted, result.Counters.CacheHits,
				util.HumanReadableSize(result.Counters.BytesHashed))
		}

		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			osFs := afero.NewOsFs()
			confirmed, err := util.ConfirmOverwrite(osFs, csvPath, os.Stdin, os.Stdout)
			if err != nil {
				return fmt.Errorf("confirmation failed: %v", err)
			}
			if !confirmed {
				fmt.Println("Export skipped")
				return nil
			}
			if err := export.WriteCSVFile(osFs, csvPath, result.Groups); err != nil {
				return fmt.Errorf("failed to export CSV: %v", err)
			}
			fmt.Printf("✓ Exported duplicate groups to %s\n", csvPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addEngineFlags(scanCmd)
	scanCmd.Flags().String("csv", "", "Write duplicate groups to a CSV file")
}
