package middleware

import (
	"net/http"
	"time"

	"github.com/robgibbons/express-unchained/models"
)

// AccessLog logs one structured line per request: method, path, matched
// pattern, status, bytes and duration. Request ID and client IP are
// included when the corresponding middleware ran earlier in the chain.
func AccessLog(logger models.Logger) models.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newResponseRecorder(w)

			next.ServeHTTP(recorder, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"bytes", recorder.bytes,
				"duration", time.Since(start),
			}

			if info, ok := models.RouteInfoFromContext(r.Context()); ok {
				args = append(args, "pattern", info.Pattern)
			}
			if id, ok := models.RequestIDFromContext(r.Context()); ok {
				args = append(args, "request_id", id)
			}
			if ip, ok := models.ClientIPFromContext(r.Context()); ok {
				args = append(args, "client_ip", ip)
			}

			logger.Info("request", args...)
		})
	}
}
