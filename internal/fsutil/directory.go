// fsutil/directory.go
package fsutil

import (
	"os"
)

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDirIfNotExists creates a directory if it doesn't exist
func CreateDirIfNotExists(path string) error {
	if path == "" || DirExists(path) {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
