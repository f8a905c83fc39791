package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
)

// FileSystem is the file access the pipeline needs. Paths are
// slash-separated and relative to the project root.
type FileSystem interface {
	// ListProjectPaths returns every non-ignored file under root, sorted.
	ListProjectPaths(root string) ([]string, error)
	ReadFile(path string) (string, error)
	// WriteFile creates or replaces path, creating parent directories.
	WriteFile(path, content string) error
	DeleteFile(path string) error
}

// ErrOutsideRoot is returned for paths that escape the project root.
var ErrOutsideRoot = errors.New("path escapes the project root")

// IsNotExist reports whether err means the file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func notExist(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

func outsideRoot(path string) error {
	return fmt.Errorf("%s: %w", path, ErrOutsideRoot)
}
