package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"weedx-backend/internal/response"
	"weedx-backend/internal/route"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	table := route.New("", nil)
	table.HandlePublic(http.MethodGet, "gallery/{id}", response.HandlerFunc(func(r *http.Request) response.Envelope {
		return response.Success(nil, "")
	}))
	handler := m.Middleware(table)

	for _, target := range []string{"/gallery/1", "/gallery/2", "/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "gallery/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestMiddleware_FoldsUnknownMethods(t *testing.T) {
	m := New()
	handler := m.Middleware(route.New("", nil))

	for _, method := range []string{"PROPFIND", "BREW", http.MethodDelete} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/missing", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("other", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodDelete, "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requests))
}

func TestObserveAuth(t *testing.T) {
	m := New()
	m.ObserveAuth("expired")
	m.ObserveAuth("expired")
	m.ObserveAuth("valid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("valid")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveAuth("missing")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `weedx_auth_attempts_total{outcome="missing"} 1`)
}
