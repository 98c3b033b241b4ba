package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/logging"
)

// responder writes JSON bodies and error envelopes.
type responder struct {
	log *logging.Logger
}

// errorBody is the envelope of every error response.
type errorBody struct {
	Error      string `json:"error"`
	NextAction string `json:"next_action,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	PrintURL   string `json:"print_url,omitempty"`
}

// jsonResponse writes a JSON response
func (rs responder) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.log.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (rs responder) errorResponse(w http.ResponseWriter, status int, message string) {
	rs.jsonResponse(w, status, errorBody{Error: message, NextAction: NextActionDismiss})
}

// failure maps err to its status and next action. Server errors are logged and
// their details withheld.
func (rs responder) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := errorBody{Error: err.Error(), NextAction: NextAction(err), Retryable: Retryable(err)}
	switch status {
	case http.StatusInternalServerError:
		rs.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal server error"
	case http.StatusServiceUnavailable:
		rs.log.Warn("backend unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "service temporarily unavailable, please try again"
	}
	rs.jsonResponse(w, status, body)
}

// decode reads a JSON body into v and runs struct validation.
func decode(r *http.Request, v any, validate *validator.Validate) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body"}
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
