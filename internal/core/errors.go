package core

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrScanInProgress rejects a scan request while another scan is running
	ErrScanInProgress = errors.New("already scanning")

	// ErrNoRoot is returned when no root path is given
	ErrNoRoot = errors.New("no root path specified")

	// ErrNotDirectory is returned when the root is a file
	ErrNotDirectory = errors.New("root is not a directory")

	// ErrAllEntriesFailed is returned alongside the inventory when every
	// candidate file failed to read
	ErrAllEntriesFailed = errors.New("no entry could be read")
)

// PathNotFoundError reports a missing scan root
type PathNotFoundError struct {
	Path string
	Err  error
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

func (e *PathNotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// PermissionError reports an unreadable root or entry
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Path)
}

func (e *PermissionError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrPermission
	}
	return e.Err
}

// classifyPathError maps an os error for path to the scanner's error types
func classifyPathError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &PathNotFoundError{Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &PermissionError{Path: path, Err: err}
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
}
