// Package export serializes duplicate groups for use outside the tool.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/duplicates"
)

var csvHeader = []string{"group_id", "survivor", "path", "size_bytes", "fingerprint"}

// WriteCSV writes one row per redundant file. The survivor column repeats
// on every row of its group so each line stands alone when filtered.
func WriteCSV(w io.Writer, groups []duplicates.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, group := range groups {
		survivor := group.Survivor().Path
		fingerprint := fmt.Sprintf("%016x", group.Fingerprint)
		for _, file := range group.Redundant() {
			record := []string{
				strconv.Itoa(group.ID),
				survivor,
				file.Path,
				strconv.FormatInt(file.Size, 10),
				fingerprint,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write csv record for %s: %w", file.Path, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the rows to a file on the given filesystem.
func WriteCSVFile(fs afero.Fs, path string, groups []duplicates.Group) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	if err := WriteCSV(f, groups); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv file: %w", err)
	}
	return nil
}
