// Package export turns a rendered resume into a downloadable PDF.
package export

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound is returned when the rendered document has no export target.
	ErrTargetNotFound = errors.New("export target not found")
	// ErrExportInProgress is returned when an export for the same resume is already running.
	ErrExportInProgress = errors.New("export already in progress")
)

// NextActionPrint tells the caller to offer the print rendition instead.
const NextActionPrint = "print"

// StyleMismatchError is returned when captured styles do not line up with the cloned tree.
type StyleMismatchError struct {
	Elements int
	Styles   int
}

func (e *StyleMismatchError) Error() string {
	return fmt.Sprintf("style snapshot mismatch: %d elements, %d computed styles", e.Elements, e.Styles)
}

// ExportError is returned when neither PDF tier produced a file.
type ExportError struct {
	NextAction string
	Cause      error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed (next action: %s): %v", e.NextAction, e.Cause)
	}
	return fmt.Sprintf("export failed (next action: %s)", e.NextAction)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
