package filestorage

import (
	"errors"
	"io"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit
var ErrTooLarge = errors.New("file exceeds the maximum upload size")

// FileInfo describes a stored document
type FileInfo struct {
	Path     string // Storage key, relative to the storage root
	Filename string // Original filename
	FileSize int64  // Size in bytes
}

// FileStorage stores uploaded documents until they are printed or cleaned up
type FileStorage interface {
	// Save copies content under a fresh unique name that keeps the original extension
	Save(originalName string, content io.Reader) (*FileInfo, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(path string) error
}
