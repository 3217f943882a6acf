package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "tilde prefix",
			input: "~/cache/deduce.json",
			want:  filepath.Join(home, "cache", "deduce.json"),
		},
		{
			name:  "absolute path untouched",
			input: "/var/tmp/deduce.json",
			want:  "/var/tmp/deduce.json",
		},
		{
			name:  "relative path untouched",
			input: "cache/deduce.json",
			want:  "cache/deduce.json",
		},
		{
			name:  "bare tilde untouched",
			input: "~",
			want:  "~",
		},
		{
			name:  "tilde user untouched",
			input: "~other/file",
			want:  "~other/file",
		},
		{
			name:  "empty path",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
