package filestorage

import "time"

// FileInfo represents information about a stored file
type FileInfo struct {
	Path     string // Full path where the file is stored
	Filename string
	FileSize int64 // Size in bytes
	ModTime  time.Time
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveBytes writes data under name inside subPath and returns the stored path
	SaveBytes(subPath, name string, data []byte) (string, error)

	// List returns the files in subPath, newest first
	List(subPath string) ([]FileInfo, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a stored file
	GetFullPath(subPath, name string) string
}
