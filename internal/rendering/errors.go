// Package rendering turns a resume document into a styled HTML display tree.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a resume template
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	name := e.Template
	if name == "" {
		name = "unknown"
	}
	if e.Cause != nil {
		return fmt.Sprintf("template error (%s): %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error (%s): %s", name, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
