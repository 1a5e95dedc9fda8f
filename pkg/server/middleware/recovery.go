package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 response. The panic and stack trace are logged with the request ID
// for correlation; internals are never exposed to clients.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				// Ignore encoding errors at this point
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"message": "An internal error occurred.",
						"type":    "internal_error",
					},
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
