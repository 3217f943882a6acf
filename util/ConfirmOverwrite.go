package util

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// ConfirmOverwrite asks before clobbering an existing file. A path that
// does not exist yet needs no confirmation.
func ConfirmOverwrite(fsys afero.Fs, path string, in io.Reader, out io.Writer) (bool, error) {
	if _, err := fsys.Stat(path); err != nil {
		return true, nil
	}
	return Confirm(fmt.Sprintf("File %s already exists, overwrite?", path), in, out)
}
