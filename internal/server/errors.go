// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/autosave"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/records"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/store"
)

// ErrSessionNotFound is returned when no editing session is open for a resume.
var ErrSessionNotFound = errors.New("no editing session open for this resume")

// Next actions offered to clients alongside an error.
const (
	NextActionRetry   = "retry"
	NextActionPrint   = export.NextActionPrint
	NextActionDismiss = "dismiss"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userNotFound *ErrUserNotFound
		validation   *ErrValidation
		notFound     *records.NotFoundError
		badImport    *records.InvalidImportError
		unknownSect  *editor.UnknownSectionError
		badSection   *editor.InvalidSectionError
		noEntry      *editor.EntryNotFoundError
		badTemplate  *rendering.TemplateError
		exportErr    *export.ExportError
		unavailable  *store.UnavailableError
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound),
		errors.As(err, &noEntry), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &badImport), errors.As(err, &unknownSect),
		errors.As(err, &badSection), errors.As(err, &badTemplate), errors.Is(err, store.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrExportInProgress), errors.Is(err, autosave.ErrSaveInProgress):
		return http.StatusConflict
	case errors.Is(err, editor.ErrSessionClosed), errors.Is(err, autosave.ErrClosed):
		return http.StatusGone
	case errors.As(err, &exportErr):
		return http.StatusBadGateway
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NextAction returns what a client should offer the user after err.
func NextAction(err error) string {
	var exportErr *export.ExportError
	if errors.As(err, &exportErr) {
		return exportErr.NextAction
	}
	switch status := HTTPStatus(err); {
	case status == http.StatusServiceUnavailable, status == http.StatusInternalServerError,
		errors.Is(err, autosave.ErrSaveInProgress):
		return NextActionRetry
	default:
		return NextActionDismiss
	}
}

// Retryable reports whether repeating the request may succeed.
func Retryable(err error) bool {
	return NextAction(err) == NextActionRetry
}
