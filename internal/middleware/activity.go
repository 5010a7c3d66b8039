package middleware

import "net/http"

type activityRecorder interface {
	LogRequest(endpoint, method string)
	LogResult(endpoint string, status int, message string)
}

// Activity writes one request line before and one result line after every
// call into the daily activity log. endpoint names the route path the table
// dispatches on.
func Activity(recorder activityRecorder, endpoint func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := endpoint(r)
			recorder.LogRequest(path, r.Method)

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			message := ""
			if summary, ok := wrapped.errorSummary(); ok {
				message = summary.Message
			}
			recorder.LogResult(path, wrapped.status, message)
		})
	}
}
