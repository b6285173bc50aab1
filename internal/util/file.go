package util

import (
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions is the set of source slice file extensions (with leading
// dot) that this module's decoders can read.
var ImageExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
