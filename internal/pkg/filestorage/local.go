package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	maxBytes int64  // Upload limit; zero disables the check
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath
func NewLocalStorage(basePath string, maxBytes int64, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// Save stores content in a month-partitioned subdirectory
func (ls *LocalStorage) Save(originalName string, content io.Reader) (*FileInfo, error) {
	subPath := time.Now().UTC().Format("2006-01")
	fullDirPath := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(fullDirPath, 0o750); err != nil {
		ls.logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Generate a unique filename to prevent collisions
	ext := strings.ToLower(filepath.Ext(originalName))
	uniqueFilename := uuid.NewString() + ext
	relPath := filepath.ToSlash(filepath.Join(subPath, uniqueFilename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	reader := content
	if ls.maxBytes > 0 {
		// One extra byte detects overflow without buffering the whole upload
		reader = io.LimitReader(content, ls.maxBytes+1)
	}

	written, copyErr := io.Copy(dst, reader)
	closeErr := dst.Close()
	switch {
	case copyErr != nil:
		err = fmt.Errorf("failed to save file content: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("failed to flush file content: %w", closeErr)
	case ls.maxBytes > 0 && written > ls.maxBytes:
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(dstPath)
		ls.logger.Warn().Err(err).Str("filename", originalName).Msg("Upload not stored")
		return nil, err
	}

	ls.logger.Info().Str("filename", originalName).Str("saved_as", relPath).Int64("size", written).Msg("File saved successfully")
	return &FileInfo{Path: relPath, Filename: originalName, FileSize: written}, nil
}

// Delete removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) Delete(path string) error {
	if path == "" {
		return nil // Nothing to delete
	}

	physicalPath, err := ls.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		ls.logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	ls.logger.Debug().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// resolve maps a storage key onto the filesystem, refusing keys that escape the root
func (ls *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid file path: %s", path)
	}
	return filepath.Join(ls.basePath, clean), nil
}
