// Package middleware ships the middleware pack that plugs into composed
// route chains: request IDs, access logging, panic recovery, CORS, client
// IP resolution and rate limiting. Every middleware has the standard
// func(http.Handler) http.Handler shape, so they compose anywhere a
// models.Middleware is accepted.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/robgibbons/express-unchained/models"
)

// RequestIDHeader is the header request IDs are read from and echoed to.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns each request a UUID unless the client already sent
// one, stores it in the request context and echoes it on the response.
func RequestID() models.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)

			ctx := r.Context()
			ctx = contextWithRequestID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
