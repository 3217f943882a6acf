/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/report"
	"github.com/substantialcattle5/deduce/util"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [directories...]",
	Short: "Summarize duplication across directory trees",
	Long: `Scan one or more directory trees and print an aggregate duplication
report: how many files were seen, how many are redundant, how much
space deleting them would reclaim, and how the waste spreads across
file size ranges.

Nothing is modified.

Example:
  # How much space are duplicate photos wasting?
  deduce report ~/Pictures

  # Whole home directory, ignoring small files
  deduce report --min-size 100KB ~`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags(cmd, args)
		if err != nil {
			return err
		}

		result, err := runEngine(cmd, opts, "Analyzing duplicates")
		if err != nil {
			return err
		}
		reportRunIssues(cmd, result)

		report.DisplayReport(result.Report)

		fmt.Printf("\nRun took %s, hashed %s across %d file(s) (%d served from cache)\n",
			result.Duration.Round(time.Millisecond),
			util.HumanReadableSize(result.Counters.BytesHashed),
			result.Counters.FilesFingerprinted,
			result.Counters.CacheHits)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addEngineFlags(reportCmd)
}
