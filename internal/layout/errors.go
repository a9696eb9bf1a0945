package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrFragmentNotFound is returned when an include names a fragment file
	// that does not exist.
	ErrFragmentNotFound = errors.New("fragment not found")
	// ErrIncludeCycle is returned when fragments include each other.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrMissingType is returned for a component without a "type".
	ErrMissingType = errors.New("missing required \"type\"")
)

// ParseError reports malformed layout JSON. It is fatal for one file only.
type ParseError struct {
	File string
	Path string // location inside the document, e.g. "root.children[2]"
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s at %s: %v", e.File, e.Path, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IncludeError reports an include that could not be resolved.
type IncludeError struct {
	File    string
	Include string
	Err     error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("include %q in %s: %v", e.Include, e.File, e.Err)
}

func (e *IncludeError) Unwrap() error { return e.Err }
