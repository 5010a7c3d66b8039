// Package route dispatches API requests through an ordered table of
// method and path patterns.
//
// The table is filled once at start-up and only read afterwards. Entries are
// tried in registration order and the first whose method and pattern both
// match handles the request. A method mismatch is not an error here: the
// next entry is tried and, if none matches, the caller gets a 404 envelope.
package route

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"weedx-backend/internal/response"
)

// Any matches every HTTP method. Handlers registered with it check the
// method themselves.
const Any = "*"

// QueryParam carries the route path for clients that address the API as
// index.php?request=<path>.
const QueryParam = "request"

const unmatchedPattern = "unmatched"

type entry struct {
	method   string
	pattern  string
	segments []string
	handler  http.Handler
}

type Table struct {
	prefix  string
	protect func(http.Handler) http.Handler
	entries []entry
}

// New returns an empty table. prefix is removed from URL paths before
// matching; protect wraps every handler registered with Handle.
func New(prefix string, protect func(http.Handler) http.Handler) *Table {
	return &Table{
		prefix:  "/" + strings.Trim(prefix, "/"),
		protect: protect,
	}
}

// Handle registers a handler that requires a valid bearer token.
func (t *Table) Handle(method, pattern string, h http.Handler) {
	if t.protect != nil {
		h = t.protect(h)
	}
	t.add(method, pattern, h)
}

// HandlePublic registers a handler reachable without a token.
func (t *Table) HandlePublic(method, pattern string, h http.Handler) {
	t.add(method, pattern, h)
}

func (t *Table) add(method, pattern string, h http.Handler) {
	pattern = strings.Trim(pattern, "/")
	t.entries = append(t.entries, entry{
		method:   strings.ToUpper(method),
		pattern:  pattern,
		segments: splitPath(pattern),
		handler:  h,
	})
}

// Patterns lists "METHOD pattern" for every entry in registration order.
func (t *Table) Patterns() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.method+" "+e.pattern)
	}
	return out
}

// Path returns the route path of r: the request query parameter when it is
// present, otherwise the URL path without the table prefix. Leading and
// trailing slashes are removed.
func (t *Table) Path(r *http.Request) string {
	query := r.URL.Query()
	if query.Has(QueryParam) {
		return strings.Trim(query.Get(QueryParam), "/")
	}

	path := r.URL.Path
	if t.prefix != "/" {
		if path == t.prefix {
			path = ""
		} else if strings.HasPrefix(path, t.prefix+"/") {
			path = path[len(t.prefix):]
		}
	}

	return strings.Trim(path, "/")
}

// Match finds the first entry accepting method and path.
func (t *Table) Match(method, path string) (pattern string, params map[string]string, h http.Handler, ok bool) {
	segments := splitPath(path)
	for _, e := range t.entries {
		if e.method != Any && e.method != method {
			continue
		}
		if captured, matched := matchSegments(e.segments, segments); matched {
			return e.pattern, captured, e.handler, true
		}
	}
	return "", nil, nil, false
}

func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := t.Path(r)
	pattern, params, h, ok := t.Match(r.Method, path)
	if !ok {
		recordPattern(r.Context(), unmatchedPattern)
		response.Write(w, response.Error("Endpoint not found", http.StatusNotFound))
		return
	}

	recordPattern(r.Context(), pattern)
	ctx := context.WithValue(r.Context(), paramsKey{}, params)
	ctx = context.WithValue(ctx, pathKey{}, path)
	h.ServeHTTP(w, r.WithContext(ctx))
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range pattern {
		name, isParam := paramName(seg)
		if !isParam {
			if seg != path[i] {
				return nil, false
			}
			continue
		}

		if !isDigits(path[i]) {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string, 1)
		}
		params[name] = path[i]
	}

	return params, true
}

func paramName(segment string) (string, bool) {
	if len(segment) > 2 && segment[0] == '{' && segment[len(segment)-1] == '}' {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

type paramsKey struct{}

// Param returns a captured path segment, or "" when name was not captured.
func Param(r *http.Request, name string) string {
	params, _ := r.Context().Value(paramsKey{}).(map[string]string)
	return params[name]
}

// IntParam returns a captured numeric path segment.
func IntParam(r *http.Request, name string) (int64, bool) {
	raw := Param(r, name)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

type pathKey struct{}

// ResolvedPath returns the route path the table matched r on. Requests that
// never went through a table fall back to the trimmed URL path.
func ResolvedPath(r *http.Request) string {
	if path, ok := r.Context().Value(pathKey{}).(string); ok {
		return path
	}
	return strings.Trim(r.URL.Path, "/")
}

type patternKey struct{}

// TrackPattern prepares r so that the pattern chosen by a Table further down
// the chain can be read back once the request has been served.
// Reading the pattern is safe while a timed-out handler is still running.
func TrackPattern(r *http.Request) (*http.Request, func() string) {
	holder := new(atomic.Pointer[string])
	tracked := r.WithContext(context.WithValue(r.Context(), patternKey{}, holder))
	return tracked, func() string {
		if p := holder.Load(); p != nil {
			return *p
		}
		return unmatchedPattern
	}
}

func recordPattern(ctx context.Context, pattern string) {
	if holder, ok := ctx.Value(patternKey{}).(*atomic.Pointer[string]); ok {
		holder.Store(&pattern)
	}
}
