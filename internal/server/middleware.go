package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/cors"

	applog "dessertbox/internal/log"
)

const requestIDHeader = "X-Request-ID"

// withRequestID tags every request with an id, reusing a well-formed one
// supplied by the caller.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := applog.WithRequestID(r.Context(), id)
		applog.Debug(ctx, "request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newCORS answers cross-origin requests from the allowed origins. An empty
// list allows every origin.
func newCORS(allowed []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", requestIDHeader, "HX-Request", "HX-Target", "HX-Current-URL"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         600,
	})
}
