package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS answers preflight requests with 200 so older mobile web views accept
// them, and allows every method the API routes on.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"Authorization", "Content-Type", "X-Requested-With", requestIDHeader},
		ExposedHeaders:       []string{"Content-Length", requestIDHeader},
		MaxAge:               3600,
		AllowCredentials:     false,
		OptionsSuccessStatus: http.StatusOK,
	})

	return handler.Handler
}
