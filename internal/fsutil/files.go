// fsutil/files.go
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileAtomic creates a temporary file next to dest, hands it to write, and renames it
// over dest only when write and close both succeed. On any failure the temporary file is
// removed and dest is left untouched.
func WriteFileAtomic(dest string, perm os.FileMode, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(dest)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("error creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("error syncing temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("error setting file permissions: %w", err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("error moving %s into place: %w", dest, err)
	}
	return nil
}
