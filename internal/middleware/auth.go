package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weedx-backend/internal/response"
	"weedx-backend/internal/token"
	"weedx-backend/pkg/apierror"
)

var (
	ErrMissingToken = apierror.New("Authorization token required", http.StatusUnauthorized)
	ErrInvalidToken = apierror.New("Invalid or expired token", http.StatusUnauthorized)
	ErrTokenExpired = apierror.New("Token expired", http.StatusUnauthorized)
)

// Terminal outcomes of a bearer check.
const (
	OutcomeValid            = "valid"
	OutcomeMissing          = "missing"
	OutcomeMalformed        = "malformed"
	OutcomeSignatureInvalid = "signature_invalid"
	OutcomeExpired          = "expired"
)

type tokenDecoder interface {
	Decode(raw string) (token.Claims, error)
}

type authObserver interface {
	ObserveAuth(outcome string)
}

type authRecorder interface {
	LogAuth(endpoint string, userID int64, ok bool)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	decoder  tokenDecoder
	now      func() time.Time
	observer authObserver
	recorder authRecorder
	endpoint func(*http.Request) string
}

type AuthOption func(*AuthMiddleware)

func WithClock(now func() time.Time) AuthOption {
	return func(m *AuthMiddleware) { m.now = now }
}

func WithAuthObserver(observer authObserver) AuthOption {
	return func(m *AuthMiddleware) { m.observer = observer }
}

func WithAuthRecorder(recorder authRecorder) AuthOption {
	return func(m *AuthMiddleware) { m.recorder = recorder }
}

// WithEndpoint sets how the recorder names the endpoint of a request.
func WithEndpoint(endpoint func(*http.Request) string) AuthOption {
	return func(m *AuthMiddleware) { m.endpoint = endpoint }
}

func NewAuthMiddleware(decoder tokenDecoder, opts ...AuthOption) *AuthMiddleware {
	m := &AuthMiddleware{
		decoder:  decoder,
		now:      time.Now,
		endpoint: func(r *http.Request) string { return r.URL.Path },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate validates the bearer token on r and returns its claims.
func (m *AuthMiddleware) Authenticate(r *http.Request) (token.Claims, error) {
	raw := bearerToken(r)
	if raw == "" {
		return token.Claims{}, ErrMissingToken
	}

	claims, err := m.decoder.Decode(raw)
	if err != nil {
		return token.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.ExpiresAt <= m.now().Unix() {
		return token.Claims{}, ErrTokenExpired
	}

	return claims, nil
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r)
		outcome := Outcome(err)
		if m.observer != nil {
			m.observer.ObserveAuth(outcome)
		}
		if m.recorder != nil {
			m.recorder.LogAuth(m.endpoint(r), claims.Subject, err == nil)
		}

		if err != nil {
			response.Write(w, response.FromError(err))
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(token.Claims)
	return claims, ok
}

// ContextWithClaims is used by tests and internal callers that already hold
// validated claims.
func ContextWithClaims(ctx context.Context, claims token.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

// Outcome names the terminal state reached by Authenticate.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, ErrMissingToken):
		return OutcomeMissing
	case errors.Is(err, ErrTokenExpired):
		return OutcomeExpired
	case errors.Is(err, token.ErrSignatureInvalid):
		return OutcomeSignatureInvalid
	default:
		return OutcomeMalformed
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return header
}
