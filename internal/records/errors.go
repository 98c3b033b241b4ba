// Package records manages stored resumes: creating, copying, importing and deleting them.
package records

import "fmt"

// NotFoundError indicates the resume does not exist for the user.
type NotFoundError struct {
	ResumeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ResumeID)
}

// InvalidImportError indicates an imported document was rejected.
type InvalidImportError struct {
	Message string
	Cause   error
}

func (e *InvalidImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid import: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid import: %s", e.Message)
}

func (e *InvalidImportError) Unwrap() error {
	return e.Cause
}
