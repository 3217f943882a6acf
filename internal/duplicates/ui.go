package duplicates

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/substantialcattle5/deduce/util"
)

var (
	keepMark  = color.New(color.FgGreen, color.Bold).SprintFunc()
	dupeMark  = color.New(color.FgYellow).SprintFunc()
	groupHead = color.New(color.Bold).SprintFunc()
)

// FormatGroupHeader renders the one-line summary for a group.
func FormatGroupHeader(g Group, verbose bool) string {
	header := fmt.Sprintf("Group %d: %d files, %s each", g.ID, len(g.Files), util.HumanReadableSize(g.Size))
	if verbose {
		header += fmt.Sprintf(" (fingerprint %016x)", g.Fingerprint)
	}
	return header
}

// DisplayGroups prints every group with its survivor marked. The survivor
// line carries [keep], the rest [dupe], so the output doubles as a preview
// of what delete or move would touch.
func DisplayGroups(groups []Group, verbose bool) {
	for _, group := range groups {
		fmt.Printf("%s\n", groupHead(FormatGroupHeader(group, verbose)))
		fmt.Printf("  %s %s\n", keepMark("[keep]"), group.Survivor().Path)
		for _, file := range group.Redundant() {
			fmt.Printf("  %s %s\n", dupeMark("[dupe]"), file.Path)
		}
		fmt.Println()
	}
}

// DisplaySummary prints the totals line shown after a scan.
func DisplaySummary(groups []Group) {
	if len(groups) == 0 {
		fmt.Println("✓ No duplicates found")
		return
	}

	redundant := TotalRedundant(groups)
	wasted := TotalWasted(groups)
	fmt.Printf("Found %d duplicate group(s), %d redundant file(s), %s reclaimable\n",
		len(groups), redundant, util.HumanReadableSize(wasted))
}
