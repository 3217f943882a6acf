// Package fingerprint computes 64-bit content fingerprints for candidate
// files, consulting the cache so unchanged files are never hashed twice.
package fingerprint

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/substantialcattle5/deduce/internal/config"
)

// Hash streams a file through xxhash in chunkSize reads and returns the
// 64-bit fingerprint together with the number of bytes read.
func Hash(fsys afero.Fs, path string, chunkSize int) (uint64, int64, error) {
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}

	file, err := fsys.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	digest := xxhash.New()
	buf := make([]byte, chunkSize)
	var total int64

	for {
		n, err := file.Read(buf)
		if n > 0 {
			// xxhash.Digest.Write never fails.
			digest.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, total, err
		}
	}

	return digest.Sum64(), total, nil
}
