// Package report aggregates a finished run into totals and a size
// distribution of the redundant files.
package report

import (
	"math"

	"github.com/substantialcattle5/deduce/internal/duplicates"
	"github.com/substantialcattle5/deduce/internal/scan"
)

// SizeRange is one histogram bucket over redundant file sizes.
type SizeRange struct {
	Label string
	Count int
	Bytes int64
}

// Report summarizes a run. Histogram always carries the full fixed set of
// buckets so the shape is stable; renderers skip empty ones.
type Report struct {
	TotalFiles       int
	TotalDirs        int
	CandidateFiles   int
	UniqueSizeFiles  int
	GroupCount       int
	DuplicateFiles   int
	ReclaimableBytes int64
	Histogram        []SizeRange
}

// Magnitude bucket upper bounds, binary units with decade steps.
var histogramBounds = []struct {
	label string
	upper int64
}{
	{"< 1 KB", 1 << 10},
	{"1 KB - 10 KB", 10 << 10},
	{"10 KB - 100 KB", 100 << 10},
	{"100 KB - 1 MB", 1 << 20},
	{"1 MB - 10 MB", 10 << 20},
	{"10 MB - 100 MB", 100 << 20},
	{"100 MB - 1 GB", 1 << 30},
	{">= 1 GB", math.MaxInt64},
}

// Build computes the report for a set of duplicate groups plus the
// traversal stats. Only redundant copies count toward the histogram and
// the reclaimable total; survivors cost nothing to keep.
func Build(groups []duplicates.Group, stats scan.Stats) Report {
	r := Report{
		TotalFiles:      stats.TotalFiles,
		TotalDirs:       stats.TotalDirs,
		CandidateFiles:  stats.CandidateFiles,
		UniqueSizeFiles: stats.UniqueSizeFiles,
		GroupCount:      len(groups),
		Histogram:       make([]SizeRange, len(histogramBounds)),
	}
	for i, bound := range histogramBounds {
		r.Histogram[i].Label = bound.label
	}

	for _, group := range groups {
		redundant := len(group.Files) - 1
		r.DuplicateFiles += redundant
		r.ReclaimableBytes += group.WastedBytes()

		bucket := bucketFor(group.Size)
		r.Histogram[bucket].Count += redundant
		r.Histogram[bucket].Bytes += group.Size * int64(redundant)
	}

	return r
}

func bucketFor(size int64) int {
	for i, bound := range histogramBounds {
		if size < bound.upper {
			return i
		}
	}
	return len(histogramBounds) - 1
}
