// Package duplicates turns fingerprint partitions into ordered duplicate
// groups with a deterministic survivor per group.
package duplicates

import (
	"sort"

	"github.com/substantialcattle5/deduce/internal/fingerprint"
	"github.com/substantialcattle5/deduce/internal/scan"
)

// Group is a set of files sharing size and content fingerprint.
// Files is sorted by path; Files[0] is the survivor that every action
// leaves untouched.
type Group struct {
	ID          int
	Size        int64
	Fingerprint uint64
	Files       []scan.FileRecord
}

// Survivor returns the file kept by every action, the lexicographically
// smallest path in the group.
func (g Group) Survivor() scan.FileRecord {
	return g.Files[0]
}

// Redundant returns the members eligible for delete or move.
func (g Group) Redundant() []scan.FileRecord {
	return g.Files[1:]
}

// WastedBytes is the space reclaimable from the group, one size per
// redundant copy.
func (g Group) WastedBytes() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// GroupAll keeps every partition with at least two files and shapes it
// into a Group. Members are sorted by path, groups are ordered by their
// survivor's path, and IDs are assigned 1..n in that order, so the same
// filesystem state always yields the same output.
func GroupAll(partitions fingerprint.Partition) []Group {
	groups := make([]Group, 0, len(partitions))

	for key, files := range partitions {
		if len(files) < 2 {
			continue
		}

		members := make([]scan.FileRecord, len(files))
		copy(members, files)
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })

		groups = append(groups, Group{
			Size:        key.Size,
			Fingerprint: key.Fingerprint,
			Files:       members,
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Survivor().Path < groups[j].Survivor().Path })
	for i := range groups {
		groups[i].ID = i + 1
	}

	return groups
}

// TotalRedundant counts the files eligible for action across all groups.
func TotalRedundant(groups []Group) int {
	count := 0
	for _, group := range groups {
		count += len(group.Files) - 1
	}
	return count
}

// TotalWasted sums the reclaimable bytes across all groups.
func TotalWasted(groups []Group) int64 {
	var total int64
	for _, group := range groups {
		total += group.WastedBytes()
	}
	return total
}
