package report

import (
	"errors"
	"fmt"
	"io/fs"
)

// Cause classifies why an export failed
type Cause string

const (
	CauseNotFound   Cause = "not found"
	CausePermission Cause = "permission denied"
	CauseMalformed  Cause = "malformed"
	CauseIO         Cause = "i/o error"
)

// WriteError is returned when a report cannot be produced or written.
// The inventory is unaffected and can be exported again.
type WriteError struct {
	Path   string
	Format Format
	Err    error

	malformed bool
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s report to %s (%s): %v", e.Format, e.Path, e.Cause(), e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Cause reports the failure class
func (e *WriteError) Cause() Cause {
	switch {
	case e.malformed:
		return CauseMalformed
	case errors.Is(e.Err, fs.ErrNotExist):
		return CauseNotFound
	case errors.Is(e.Err, fs.ErrPermission):
		return CausePermission
	default:
		return CauseIO
	}
}

func writeError(path string, format Format, err error) *WriteError {
	return &WriteError{Path: path, Format: format, Err: err}
}

func encodeError(path string, format Format, err error) *WriteError {
	return &WriteError{Path: path, Format: format, Err: err, malformed: true}
}
