package middleware

import (
	"net/http"

	"github.com/odontoprint/gapheal/internal/api"
)

// MaxBodyBytes caps request body size at n bytes. Requests declaring
// a larger Content-Length are rejected up front; chunked bodies are
// capped while reading.
func MaxBodyBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > n {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
