package report

import (
	"testing"
	"time"

	"github.com/substantialcattle5/deduce/internal/duplicates"
	"github.com/substantialcattle5/deduce/internal/scan"
)

func group(id int, size int64, paths ...string) duplicates.Group {
	g := duplicates.Group{ID: id, Size: size, Fingerprint: uint64(id)}
	for _, path := range paths {
		g.Files = append(g.Files, scan.FileRecord{
			Path:    path,
			Size:    size,
			ModTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return g
}

func TestBuild_Totals(t *testing.T) {
	groups := []duplicates.Group{
		group(1, 100, "/a/1", "/a/2", "/a/3"),
		group(2, 2048, "/b/1", "/b/2"),
	}
	stats := scan.Stats{TotalFiles: 50, TotalDirs: 7, CandidateFiles: 10, UniqueSizeFiles: 3}

	r := Build(groups, stats)

	if r.GroupCount != 2 {
		t.Errorf("expected 2 groups, got %d", r.GroupCount)
	}
	if r.DuplicateFiles != 3 {
		t.Errorf("expected 3 redundant files, got %d", r.DuplicateFiles)
	}
	if want := int64(2*100 + 2048); r.ReclaimableBytes != want {
		t.Errorf("expected %d reclaimable bytes, got %d", want, r.ReclaimableBytes)
	}
	if r.TotalFiles != 50 || r.TotalDirs != 7 || r.UniqueSizeFiles != 3 {
		t.Errorf("scan stats not carried: %+v", r)
	}
}

func TestBuild_EmptyGroups(t *testing.T) {
	r := Build(nil, scan.Stats{TotalFiles: 12})

	if r.GroupCount != 0 || r.DuplicateFiles != 0 || r.ReclaimableBytes != 0 {
		t.Errorf("expected zero duplicate figures, got %+v", r)
	}
	if r.TotalFiles != 12 {
		t.Errorf("expected stats carried even without duplicates, got %+v", r)
	}
	if len(r.Histogram) != len(histogramBounds) {
		t.Errorf("expected full histogram shape, got %d buckets", len(r.Histogram))
	}
}

func TestBuild_HistogramBucketEdges(t *testing.T) {
	cases := []struct {
		name  string
		size  int64
		label string
	}{
		{"zero byte", 0, "< 1 KB"},
		{"just under 1 KB", 1023, "< 1 KB"},
		{"exactly 1 KB", 1024, "1 KB - 10 KB"},
		{"just under 10 KB", 10*1024 - 1, "1 KB - 10 KB"},
		{"exactly 10 KB", 10 * 1024, "10 KB - 100 KB"},
		{"exactly 100 KB", 100 * 1024, "100 KB - 1 MB"},
		{"just under 1 MB", 1<<20 - 1, "100 KB - 1 MB"},
		{"exactly 1 MB", 1 << 20, "1 MB - 10 MB"},
		{"exactly 10 MB", 10 << 20, "10 MB - 100 MB"},
		{"exactly 100 MB", 100 << 20, "100 MB - 1 GB"},
		{"exactly 1 GB", 1 << 30, ">= 1 GB"},
		{"well past 1 GB", 5 << 30, ">= 1 GB"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Build([]duplicates.Group{group(1, tc.size, "/x/a", "/x/b")}, scan.Stats{})

			for _, bucket := range r.Histogram {
				if bucket.Label == tc.label {
					if bucket.Count != 1 {
						t.Errorf("expected 1 file in %q, got %d", tc.label, bucket.Count)
					}
					if bucket.Bytes != tc.size {
						t.Errorf("expected %d bytes in %q, got %d", tc.size, tc.label, bucket.Bytes)
					}
				} else if bucket.Count != 0 {
					t.Errorf("unexpected count in %q for size %d", bucket.Label, tc.size)
				}
			}
		})
	}
}

func TestBuild_HistogramCountsRedundantOnly(t *testing.T) {
	// A group of 4 identical files contributes 3 to its bucket.
	r := Build([]duplicates.Group{group(1, 500, "/a", "/b", "/c", "/d")}, scan.Stats{})

	if r.Histogram[0].Count != 3 {
		t.Errorf("expected 3 redundant files in first bucket, got %d", r.Histogram[0].Count)
	}
	if r.Histogram[0].Bytes != 1500 {
		t.Errorf("expected 1500 bytes in first bucket, got %d", r.Histogram[0].Bytes)
	}
}

func TestBar_Scaling(t *testing.T) {
	if got := bar(10, 10); len([]rune(got)) != maxBarWidth {
		t.Errorf("expected full bar for max count, got %d cells", len([]rune(got)))
	}
	if got := bar(1, 1000); len([]rune(got)) != 1 {
		t.Errorf("expected minimum one cell for non-empty bucket, got %d", len([]rune(got)))
	}
	if got := bar(5, 10); len([]rune(got)) != maxBarWidth/2 {
		t.Errorf("expected half bar, got %d cells", len([]rune(got)))
	}
}
