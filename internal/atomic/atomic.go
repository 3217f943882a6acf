// Package atomic replaces files so readers never observe a partial write.
package atomic

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/constants"
)

// WriteFile writes data to a temp file next to path and renames it into
// place. The old content is either fully replaced or left untouched; a
// crash mid-write can only leave the temp file behind. Parent
// directories are created as needed.
func WriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), constants.StandardDirPerms); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, perm); err != nil {
		return fmt.Errorf("stage %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("promote %s: %w", path, err)
	}
	return nil
}
