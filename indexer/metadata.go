package indexer

import (
	"fmt"
	"os"
)

// MetadataError reports a file whose metadata could not be read.
//
// The underlying error is available through errors.Unwrap.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("error reading metadata for %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// ExtractMetadata returns the modification time (Unix seconds, fractional) and
// size in bytes of the file at path. Symlinks are followed.
func ExtractMetadata(path string) (mtime float64, size int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, &MetadataError{Path: path, Err: err}
	}
	mtime = float64(info.ModTime().UnixNano()) / 1e9
	return mtime, info.Size(), nil
}
