package todo

import (
	"errors"
	"fmt"
)

// Listing sentinels returned by View and Candidates.
var (
	// ErrStoreEmpty reports that the store holds no tasks at all.
	ErrStoreEmpty = errors.New("to-do list is empty")
	// ErrNoMatches reports that tasks exist but none match the filter.
	ErrNoMatches = errors.New("no tasks match the filter")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatWarning reports a due date that does not match DateLayout.
// It is never fatal: the due date is left unset (or unchanged on edit).
type FormatWarning struct {
	Field string
	Value string
}

func (w *FormatWarning) Error() string {
	return fmt.Sprintf("%s %q is not in DD-MM-YYYY format", w.Field, w.Value)
}

// SelectionError reports a position that does not address a task in the
// listing it was taken from. NotNumber is set, with the raw text in Input,
// when the input could not be parsed.
type SelectionError struct {
	Selection int
	Max       int
	Input     string
	NotNumber bool
}

func (e *SelectionError) Error() string {
	if e.NotNumber {
		return fmt.Sprintf("invalid task number %q: not a number", e.Input)
	}
	if e.Max == 0 {
		return fmt.Sprintf("invalid task number %d: no tasks to select", e.Selection)
	}
	return fmt.Sprintf("invalid task number %d: expected 1-%d", e.Selection, e.Max)
}

// PersistenceError reports a failure to read or write the data file.
// Corrupt is set when the file existed but could not be decoded.
type PersistenceError struct {
	Op      string // "load" or "save"
	Path    string
	Corrupt bool
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Corrupt {
		return fmt.Sprintf("%s %s: file is corrupted: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
