// Package response builds the JSON envelope every endpoint answers with.
//
// Handlers return an Envelope instead of writing to the ResponseWriter, so a
// request always ends with exactly one body: the one the handler returned.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/pkg/apierror"
)

const defaultSuccessMessage = "Success"

type Envelope struct {
	Success bool
	Message string
	Data    any
	Errors  any
	Status  int
}

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

func Success(data any, message string) Envelope {
	if message == "" {
		message = defaultSuccessMessage
	}

	return Envelope{Success: true, Message: message, Data: data, Status: http.StatusOK}
}

func Error(message string, status int) Envelope {
	if status == 0 {
		status = http.StatusBadRequest
	}

	return Envelope{Success: false, Message: message, Status: status}
}

func (e Envelope) WithStatus(status int) Envelope {
	e.Status = status
	return e
}

func (e Envelope) WithErrors(errs any) Envelope {
	e.Errors = errs
	return e
}

// FromError maps err onto an error envelope. Unclassified errors become a 500
// whose message is the error text itself.
func FromError(err error) Envelope {
	if err == nil {
		return Error("An error occurred", http.StatusInternalServerError)
	}
	if env, ok := Classify(err); ok {
		return env
	}

	slog.Error("unhandled error", "error", err.Error())
	return Error(err.Error(), http.StatusInternalServerError)
}

// Classify maps errors that carry their own status: API errors and the
// domain sentinels. It reports false for everything else.
func Classify(err error) (Envelope, bool) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		return Error(apiErr.Message, apiErr.HTTPStatus).WithErrors(apiErr.Errors), true
	case errors.Is(err, model.ErrUserNotFound):
		return Error("User not found", http.StatusNotFound), true
	case errors.Is(err, model.ErrUserAlreadyExists):
		return Error("Email already registered", http.StatusConflict), true
	case errors.Is(err, model.ErrInvalidCredentials):
		return Error("Invalid credentials", http.StatusUnauthorized), true
	case errors.Is(err, model.ErrDetectionNotFound):
		return Error("Image not found", http.StatusNotFound), true
	default:
		return Envelope{}, false
	}
}

// Write serializes e as the complete response. A body that cannot be encoded
// is answered with a 500 error envelope.
func Write(w http.ResponseWriter, e Envelope) {
	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}

	var body any
	if e.Success {
		body = successBody{Success: true, Message: e.Message, Data: e.Data}
	} else {
		body = errorBody{Success: false, Message: e.Message, Errors: e.Errors}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("encode response envelope", "error", err)
		status = http.StatusInternalServerError
		payload = encodeFailure
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(payload, '\n'))
}

var encodeFailure = []byte(`{"success":false,"message":"Failed to encode response"}`)

// HandlerFunc is an endpoint that answers with an envelope.
type HandlerFunc func(r *http.Request) Envelope

func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	Write(w, f(r))
}
