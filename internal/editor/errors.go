// Package editor holds open editing sessions: the working copy of a resume,
// its autosave controller and the events clients follow.
package editor

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("editing session closed")

// UnknownSectionError indicates a section key outside the document model.
type UnknownSectionError struct {
	Section string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section: %s", e.Section)
}

// InvalidSectionError indicates section data that could not be decoded.
type InvalidSectionError struct {
	Section string
	Cause   error
}

func (e *InvalidSectionError) Error() string {
	return fmt.Sprintf("invalid %s data: %v", e.Section, e.Cause)
}

func (e *InvalidSectionError) Unwrap() error {
	return e.Cause
}

// EntryNotFoundError indicates an entry id that does not exist in the section.
type EntryNotFoundError struct {
	Section string
	ID      int
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s entry not found: %d", e.Section, e.ID)
}
