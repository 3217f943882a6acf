package util

import (
	"os"
	"path/filepath"
)

// ExpandPath resolves a leading "~/" to the current user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
