package route

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weedx-backend/internal/response"
)

type countingWriter struct {
	*httptest.ResponseRecorder
	headerWrites int
}

func (w *countingWriter) WriteHeader(status int) {
	w.headerWrites++
	w.ResponseRecorder.WriteHeader(status)
}

func named(name string) http.Handler {
	return response.HandlerFunc(func(r *http.Request) response.Envelope {
		return response.Success(map[string]string{"handler": name, "id": Param(r, "id")}, "")
	})
}

func serve(t *testing.T, h http.Handler, method, target string) (*countingWriter, map[string]any) {
	t.Helper()

	w := &countingWriter{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func handlerName(body map[string]any) string {
	data, _ := body["data"].(map[string]any)
	name, _ := data["handler"].(string)
	return name
}

func TestTable_FirstRegisteredMatchWins(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(Any, "alerts/recent", named("first"))
	table.HandlePublic(http.MethodGet, "alerts/recent", named("second"))

	_, body := serve(t, table, http.MethodGet, "/alerts/recent")
	assert.Equal(t, "first", handlerName(body))
}

func TestTable_UnmatchedIsEndpointNotFound(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "profile", named("profile"))

	w, body := serve(t, table, http.MethodGet, "/reports/daily")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Endpoint not found", body["message"])
	assert.NotContains(t, body, "data")
}

func TestTable_TrailingSlashIgnored(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "alerts/recent", named("recent"))

	w, body := serve(t, table, http.MethodGet, "/alerts/recent///")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recent", handlerName(body))
}

func TestTable_NumericParameter(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "gallery/{id}", named("gallery"))

	_, body := serve(t, table, http.MethodGet, "/gallery/42")
	assert.Equal(t, "gallery", handlerName(body))
	assert.Equal(t, "42", body["data"].(map[string]any)["id"])

	w, _ := serve(t, table, http.MethodGet, "/gallery/abc")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serve(t, table, http.MethodGet, "/gallery/42/extra")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTable_RequestQueryParameter(t *testing.T) {
	table := New("/api", nil)
	table.HandlePublic(http.MethodPost, "auth/login", named("login"))

	_, body := serve(t, table, http.MethodPost, "/index.php?request=auth/login/")
	assert.Equal(t, "login", handlerName(body))
}

func TestTable_PrefixIsStripped(t *testing.T) {
	table := New("/api/", nil)
	table.HandlePublic(http.MethodGet, "robot/status", named("robot"))

	_, body := serve(t, table, http.MethodGet, "/api/robot/status")
	assert.Equal(t, "robot", handlerName(body))

	w, _ := serve(t, table, http.MethodGet, "/apirobot/status")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTable_MethodMismatchFallsThroughToNotFound(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodDelete, "gallery/{id}", named("delete"))

	w, body := serve(t, table, http.MethodPut, "/gallery/3")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Endpoint not found", body["message"])
}

func TestTable_MethodMismatchTriesLaterEntries(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "profile/settings", named("get"))
	table.HandlePublic(http.MethodPut, "profile/settings", named("put"))

	_, body := serve(t, table, http.MethodPut, "/profile/settings")
	assert.Equal(t, "put", handlerName(body))
}

func TestTable_ExactlyOneWritePerRequest(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "profile", named("profile"))

	for _, target := range []string{"/profile", "/nowhere"} {
		w, _ := serve(t, table, http.MethodGet, target)
		assert.Equal(t, 1, w.headerWrites, target)
	}
}

func TestTable_ProtectWrapsOnlyHandle(t *testing.T) {
	protect := func(next http.Handler) http.Handler {
		return response.HandlerFunc(func(r *http.Request) response.Envelope {
			return response.Error("Authorization token required", http.StatusUnauthorized)
		})
	}
	table := New("", protect)
	table.Handle(http.MethodGet, "profile", named("profile"))
	table.HandlePublic(http.MethodPost, "auth/login", named("login"))

	w, _ := serve(t, table, http.MethodGet, "/profile")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := serve(t, table, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login", handlerName(body))
}

func TestTrackPattern(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(http.MethodGet, "gallery/{id}", named("gallery"))

	req, pattern := TrackPattern(httptest.NewRequest(http.MethodGet, "/gallery/9", nil))
	table.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "gallery/{id}", pattern())

	req, pattern = TrackPattern(httptest.NewRequest(http.MethodGet, "/nope", nil))
	table.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, unmatchedPattern, pattern())
}

func TestResolvedPath(t *testing.T) {
	table := New("/weedx-backend/api", nil)
	var got string
	table.HandlePublic(http.MethodGet, "gallery/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ResolvedPath(r)
	}))

	table.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/weedx-backend/api/gallery/3/", nil))
	assert.Equal(t, "gallery/3", got)

	table.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/index.php?request=gallery/4", nil))
	assert.Equal(t, "gallery/4", got)

	assert.Equal(t, "api/alerts", ResolvedPath(httptest.NewRequest(http.MethodGet, "/api/alerts/", nil)))
}

func TestIntParam(t *testing.T) {
	table := New("", nil)
	var got int64
	var ok bool
	table.HandlePublic(http.MethodDelete, "gallery/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IntParam(r, "id")
		_, missing := IntParam(r, "other")
		assert.False(t, missing)
	}))

	table.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/gallery/15", nil))
	assert.True(t, ok)
	assert.Equal(t, int64(15), got)
}

func TestPatterns(t *testing.T) {
	table := New("", nil)
	table.HandlePublic(Any, "/auth/register/", named("register"))
	table.Handle("get", "profile", named("profile"))

	assert.Equal(t, []string{"* auth/register", "GET profile"}, table.Patterns())
}
