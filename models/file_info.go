package models

import (
	"path/filepath"
	"time"
)

// FileRecord represents the indexed metadata of a single file.
// Path is the unique key within one store; Mtime and Size are nil when the
// record was produced without metadata or metadata extraction failed.
type FileRecord struct {
	Path  string   `json:"path"`
	Name  string   `json:"name"`
	Mtime *float64 `json:"mtime,omitempty"`
	Size  *int64   `json:"size,omitempty"`
}

// NewFileRecord creates a record without metadata.
func NewFileRecord(path, name string) FileRecord {
	return FileRecord{Path: path, Name: name}
}

// NewFileRecordWithMetadata creates a record carrying modification time and size.
func NewFileRecordWithMetadata(path, name string, mtime float64, size int64) FileRecord {
	return FileRecord{Path: path, Name: name, Mtime: &mtime, Size: &size}
}

// HasMetadata reports whether both mtime and size are present.
func (r FileRecord) HasMetadata() bool {
	return r.Mtime != nil && r.Size != nil
}

// ModTime converts the stored Unix seconds back into a time.Time.
func (r FileRecord) ModTime() (time.Time, bool) {
	if r.Mtime == nil {
		return time.Time{}, false
	}
	sec := int64(*r.Mtime)
	nsec := int64((*r.Mtime - float64(sec)) * 1e9)
	return time.Unix(sec, nsec), true
}

// Extension returns the file extension of the record name, including the dot.
func (r FileRecord) Extension() string {
	return filepath.Ext(r.Name)
}

// IndexResult is the outcome of one indexing run.
type IndexResult struct {
	Duration     time.Duration `json:"duration"`
	SkippedPaths []string      `json:"skipped_paths"`
	Records      int64         `json:"records"`
}
