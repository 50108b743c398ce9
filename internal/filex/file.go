// Package filex has filesystem helpers for the console's local state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path (for example the
// sqlite session database) and returns path unchanged. A bare file name
// needs no directory and is returned as is.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return path, nil
}

// ReadPhoto loads a photo file for upload. Empty files are rejected since
// the server cannot detect a face in them.
func ReadPhoto(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read photo %s: file is empty", path)
	}
	return data, nil
}
