// fsutil/paths.go
package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// GetExtension returns the lower-cased extension of a path without the leading dot
func GetExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// GetFileNameWithoutExt returns the file name without its extension
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TrimExtension returns path with its final extension removed, keeping the directory
func TrimExtension(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// GetConfigDir returns the per-user configuration directory for the application
func GetConfigDir(appName string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}
