package apierror

import "fmt"

// APIError is an error that already knows how it should be rendered to the
// client: the envelope message, an optional errors object and the HTTP status.
type APIError struct {
	Message    string `json:"message"`
	Errors     any    `json:"errors,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%d: %s", e.HTTPStatus, e.Message)
}

func New(message string, status int) *APIError {
	return &APIError{Message: message, HTTPStatus: status}
}

func WithErrors(message string, status int, errs any) *APIError {
	return &APIError{Message: message, Errors: errs, HTTPStatus: status}
}
