package filestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/luct/reporting/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveBytes writes data atomically: it goes to a temporary file first and is renamed into place
func (ls *LocalStorage) SaveBytes(subPath, name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("invalid file name: %q", name)
	}

	dir := ls.basePath
	if subPath != "" {
		dir = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	dstPath := filepath.Join(dir, name)
	tmpPath := filepath.Join(dir, "."+uuid.New().String()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", tmpPath).Msg("Failed to write temporary file")
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	logger.Info().Str("path", dstPath).Int("bytes", len(data)).Msg("File saved successfully")
	return dstPath, nil
}

// List returns the regular files in subPath, newest first. Hidden files are skipped.
func (ls *LocalStorage) List(subPath string) ([]FileInfo, error) {
	dir := filepath.Join(ls.basePath, subPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:     filepath.Join(dir, e.Name()),
			Filename: e.Name(),
			FileSize: info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Filename > files[j].Filename
	})
	return files, nil
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil // Nothing to delete
	}

	rel, err := filepath.Rel(ls.basePath, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logger.Warn().Str("path", filePath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(filePath); err != nil {
		logger.Error().Err(err).Str("path", filePath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", filePath).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the full filesystem path for name inside subPath
func (ls *LocalStorage) GetFullPath(subPath, name string) string {
	filename := filepath.Base(name)
	if filename == "" || filename == "." || filename == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, subPath, filename)
}
