package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/substantialcattle5/deduce/util"
)

const maxBarWidth = 24

var (
	heading  = color.New(color.Bold).SprintFunc()
	barColor = color.New(color.FgCyan).SprintFunc()
)

// DisplayReport prints the run totals and the size distribution with
// proportional bars. Empty histogram buckets are skipped.
func DisplayReport(r Report) {
	fmt.Printf("\n%s\n", heading("=== Duplicate Report ==="))
	fmt.Printf("Files scanned:          %d\n", r.TotalFiles)
	fmt.Printf("Subfolders scanned:     %d\n", r.TotalDirs)
	fmt.Printf("Files with unique size: %d\n", r.UniqueSizeFiles)
	fmt.Printf("Duplicate groups:       %d\n", r.GroupCount)
	fmt.Printf("Redundant files:        %d\n", r.DuplicateFiles)
	fmt.Printf("Reclaimable space:      %s\n", util.HumanReadableSize(r.ReclaimableBytes))

	if r.DuplicateFiles == 0 {
		return
	}

	fmt.Printf("\n%s\n", heading("Size distribution of redundant files"))
	maxCount := 0
	for _, bucket := range r.Histogram {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
	}
	for _, bucket := range r.Histogram {
		if bucket.Count == 0 {
			continue
		}
		fmt.Printf("  %-15s %s %d (%s)\n",
			bucket.Label, barColor(bar(bucket.Count, maxCount)), bucket.Count, util.HumanReadableSize(bucket.Bytes))
	}
}

// bar scales a count against the largest bucket, always at least one cell
// for a non-empty bucket.
func bar(count, max int) string {
	width := count * maxBarWidth / max
	if width < 1 {
		width = 1
	}
	return strings.Repeat("█", width)
}
