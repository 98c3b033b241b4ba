// Package store provides the document tree that resumes are persisted in. Values
// live at slash-separated paths; writes replace or merge subtrees and subscribers
// are told whenever anything at or below their path changes.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths with empty segments or reserved characters.
var ErrInvalidPath = errors.New("invalid store path")

// UnavailableError is returned when the backing database could not be read
// or written. The operation may succeed if retried.
type UnavailableError struct {
	Op    string
	Path  string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Path, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Listener receives the current value at a subscribed path, or a read error.
type Listener func(value any, err error)

// Store is the document store collaborator.
type Store interface {
	// Get reads the value at path once. A missing path reads as nil.
	Get(ctx context.Context, path string) (any, error)
	// Subscribe calls fn with the current value immediately and again after every
	// change at or below path, until the returned func is called.
	Subscribe(ctx context.Context, path string, fn Listener) (unsubscribe func(), err error)
	// Write replaces the value at path. Writing nil deletes it.
	Write(ctx context.Context, path string, value any) error
	// Update merges values into path; keys may be nested sub-paths such as "metadata/title".
	Update(ctx context.Context, path string, values map[string]any) error
	// Delete removes path and everything below it.
	Delete(ctx context.Context, path string) error
	// GenerateID returns a new time-ordered child key.
	GenerateID() string
}

const (
	serverValueKey   = ".sv"
	serverValueStamp = "timestamp"
)

// ServerTimestamp returns the sentinel that the store replaces with its clock, in epoch milliseconds.
func ServerTimestamp() map[string]any {
	return map[string]any{serverValueKey: serverValueStamp}
}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	s, ok := m[serverValueKey].(string)
	return ok && s == serverValueStamp
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// UserPath is the root of everything a user owns.
func UserPath(uid string) string { return "users/" + uid }

// ResumesPath is the collection of a user's resumes.
func ResumesPath(uid string) string { return UserPath(uid) + "/resumes" }

// ResumePath is one resume record.
func ResumePath(uid, resumeID string) string { return ResumesPath(uid) + "/" + resumeID }

// CleanPath trims surrounding slashes and validates every segment. The root is "".
func CleanPath(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", nil
	}
	for _, seg := range strings.Split(path, "/") {
		if err := validKey(seg); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidPath, path, err)
		}
	}
	return path, nil
}

func validKey(key string) error {
	if key == "" {
		return errors.New("empty segment")
	}
	if strings.ContainsAny(key, ".#$[]") {
		return errors.New("reserved character")
	}
	return nil
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "/" + child
}

// related reports whether a change at b is visible to a subscriber at a.
func related(a, b string) bool {
	return a == "" || b == "" || a == b ||
		strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
