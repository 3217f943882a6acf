package scan

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/progress"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestScanBucketsBySize(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/a.txt", "hello")      // 5 bytes
	writeFile(t, fs, "/data/sub/b.txt", "world")  // 5 bytes
	writeFile(t, fs, "/data/sub/c.txt", "!")      // 1 byte
	writeFile(t, fs, "/data/sub/deep/d.txt", "ab") // 2 bytes

	scanner := NewScanner(fs)
	state := progress.NewRunState()

	buckets, stats, err := scanner.Scan(context.Background(), []string{"/data"}, Filter{}, state)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	if len(buckets) != 3 {
		t.Fatalf("got %d size buckets, want 3", len(buckets))
	}
	if got := len(buckets[5]); got != 2 {
		t.Errorf("bucket size=5 has %d files, want 2", got)
	}
	if buckets[5][0].Path != "/data/a.txt" || buckets[5][1].Path != "/data/sub/b.txt" {
		t.Errorf("bucket size=5 not sorted by path: %+v", buckets[5])
	}

	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", stats.TotalFiles)
	}
	if stats.TotalDirs != 2 {
		t.Errorf("TotalDirs = %d, want 2", stats.TotalDirs)
	}
	if stats.CandidateFiles != 4 {
		t.Errorf("CandidateFiles = %d, want 4", stats.CandidateFiles)
	}
	if stats.UniqueSizeFiles != 2 {
		t.Errorf("UniqueSizeFiles = %d, want 2", stats.UniqueSizeFiles)
	}

	if state.FilesScanned.Load() != 4 {
		t.Errorf("FilesScanned counter = %d, want 4", state.FilesScanned.Load())
	}
}

func TestScanFilters(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/keep.txt", "0123456789")  // 10 bytes
	writeFile(t, fs, "/data/small.txt", "tiny")       // 4 bytes
	writeFile(t, fs, "/data/other.log", "0123456789") // wrong extension
	writeFile(t, fs, "/data/upper.TXT", "9876543210") // extension case

	scanner := NewScanner(fs)

	t.Run("extension filter", func(t *testing.T) {
		state := progress.NewRunState()
		buckets, stats, err := scanner.Scan(context.Background(), []string{"/data"}, Filter{Extension: ".txt"}, state)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}

		if stats.CandidateFiles != 3 {
			t.Errorf("CandidateFiles = %d, want 3 (case insensitive match)", stats.CandidateFiles)
		}
		if got := len(buckets[10]); got != 2 {
			t.Errorf("bucket size=10 has %d files, want 2", got)
		}
	})

	t.Run("min size filter", func(t *testing.T) {
		state := progress.NewRunState()
		_, stats, err := scanner.Scan(context.Background(), []string{"/data"}, Filter{MinSize: 10}, state)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}

		if stats.CandidateFiles != 3 {
			t.Errorf("CandidateFiles = %d, want 3 (4 byte file excluded)", stats.CandidateFiles)
		}
		// TotalFiles counts everything seen, filtered or not.
		if stats.TotalFiles != 4 {
			t.Errorf("TotalFiles = %d, want 4", stats.TotalFiles)
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		state := progress.NewRunState()
		buckets, stats, err := scanner.Scan(context.Background(), []string{"/data"},
			Filter{Extension: ".txt", MinSize: 5}, state)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}

		if stats.CandidateFiles != 2 {
			t.Errorf("CandidateFiles = %d, want 2", stats.CandidateFiles)
		}
		if len(buckets) != 1 {
			t.Errorf("got %d buckets, want 1", len(buckets))
		}
	})
}

func TestScanOverlappingRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/a.txt", "hello")
	writeFile(t, fs, "/data/sub/b.txt", "world")

	scanner := NewScanner(fs)
	state := progress.NewRunState()

	// /data/sub is reachable through both roots.
	buckets, stats, err := scanner.Scan(context.Background(), []string{"/data", "/data/sub"}, Filter{}, state)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2 (no double counting)", stats.TotalFiles)
	}
	if got := len(buckets[5]); got != 2 {
		t.Errorf("bucket size=5 has %d files, want 2: %+v", got, buckets[5])
	}
}

func TestScanMissingRootIsNonFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/a.txt", "hello")

	scanner := NewScanner(fs)
	state := progress.NewRunState()

	buckets, _, err := scanner.Scan(context.Background(), []string{"/nope", "/data"}, Filter{}, state)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	if got := len(buckets[5]); got != 1 {
		t.Errorf("bucket size=5 has %d files, want 1", got)
	}
	if len(state.Errors()) == 0 {
		t.Error("missing root left no recorded error")
	}
}

func TestScanCancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/a.txt", "hello")
	writeFile(t, fs, "/data/b.txt", "world")

	scanner := NewScanner(fs)

	t.Run("cancelled state stops the walk", func(t *testing.T) {
		state := progress.NewRunState()
		state.Cancel()

		buckets, _, err := scanner.Scan(context.Background(), []string{"/data"}, Filter{}, state)
		if err != nil {
			t.Fatalf("Scan() after cancel returned error: %v", err)
		}
		if buckets.FileCount() != 0 {
			t.Errorf("cancelled scan still bucketed %d files", buckets.FileCount())
		}
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		state := progress.NewRunState()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		buckets, _, err := scanner.Scan(ctx, []string{"/data"}, Filter{}, state)
		if err != nil {
			t.Fatalf("Scan() with cancelled context returned error: %v", err)
		}
		if buckets.FileCount() != 0 {
			t.Errorf("cancelled scan still bucketed %d files", buckets.FileCount())
		}
	})
}

func TestBucketsCandidates(t *testing.T) {
	buckets := Buckets{
		5:  {{Path: "/a"}, {Path: "/b"}},
		10: {{Path: "/c"}},
		20: {{Path: "/d"}, {Path: "/e"}, {Path: "/f"}},
	}

	candidates := buckets.Candidates()
	if len(candidates) != 2 {
		t.Fatalf("Candidates() kept %d buckets, want 2", len(candidates))
	}
	if _, ok := candidates[10]; ok {
		t.Error("Candidates() kept a singleton bucket")
	}
	if candidates.FileCount() != 5 {
		t.Errorf("Candidates().FileCount() = %d, want 5", candidates.FileCount())
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		size   int64
		want   bool
	}{
		{"no filter", Filter{}, "/x/f.bin", 0, true},
		{"extension hit", Filter{Extension: ".txt"}, "/x/f.txt", 1, true},
		{"extension miss", Filter{Extension: ".txt"}, "/x/f.log", 1, false},
		{"extension case insensitive", Filter{Extension: ".txt"}, "/x/F.TXT", 1, true},
		{"no extension on file", Filter{Extension: ".txt"}, "/x/README", 1, false},
		{"at min size", Filter{MinSize: 10}, "/x/f.txt", 10, true},
		{"below min size", Filter{MinSize: 10}, "/x/f.txt", 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.path, tt.size); got != tt.want {
				t.Errorf("Match(%q, %d) = %t, want %t", tt.path, tt.size, got, tt.want)
			}
		})
	}
}
