package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/varsilias/ollama-chat-relay/pkg/utils"
)

// MsgTooLarge is the error returned for bodies over the configured limit.
const MsgTooLarge = "payload too large"

// BodyLimit rejects requests whose declared length exceeds limit and caps the
// body reader for the rest, so handlers see *http.MaxBytesError on overflow.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		capped := chimw.RequestSize(limit)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				utils.Error(w, http.StatusRequestEntityTooLarge, MsgTooLarge)
				return
			}
			capped.ServeHTTP(w, r)
		})
	}
}

// CORS accepts any origin when allowed is empty, reflecting the caller's
// Origin header. Otherwise only the listed origins get CORS headers.
func CORS(allowed []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
	if len(allowed) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = allowed
	}
	return cors.Handler(opts)
}
