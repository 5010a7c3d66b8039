package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weedx-backend/internal/middleware"
	"weedx-backend/internal/response"
	"weedx-backend/internal/token"
	"weedx-backend/pkg/apierror"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidBody = apierror.New("Invalid request body", http.StatusBadRequest)
	errInvalidDate = apierror.New("Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
)

// fault turns err into an error envelope. Errors that already carry a status
// keep it; anything else is a 500 whose message is prefix plus the cause.
func fault(prefix string, err error) response.Envelope {
	if env, ok := response.Classify(err); ok {
		return env
	}

	slog.Error(strings.ToLower(prefix), "error", err)
	return response.Error(prefix+": "+err.Error(), http.StatusInternalServerError)
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// decodeFields reads the body as a JSON object. A missing or unparsable body
// yields nil, which required-field checks treat as every field missing.
func decodeFields(raw []byte) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

// decodeInto unmarshals raw into v. An empty body leaves v untouched.
func decodeInto(raw []byte, v any) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidBody
	}
	return nil
}

func currentClaims(r *http.Request) (token.Claims, bool) {
	return middleware.ClaimsFromContext(r.Context())
}

func unauthenticated() response.Envelope {
	return response.FromError(middleware.ErrMissingToken)
}

// queryInt reads a positive integer query parameter, or returns fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errInvalidDate
	}
	return &day, nil
}

// publicBaseURL is the scheme, host and mount point clients reached the API
// through. Forwarded headers from a proxy win over the connection.
func publicBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}

	root := ""
	if i := strings.Index(r.URL.Path, "/api"); i >= 0 {
		root = r.URL.Path[:i]
	}

	return scheme + "://" + host + root
}
