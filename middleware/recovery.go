package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/robgibbons/express-unchained/internal/util"
	"github.com/robgibbons/express-unchained/models"
)

// Recovery converts handler panics into 500 responses instead of dropping
// the connection, logging the panic value and stack trace.
func Recovery(logger models.Logger) models.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error(
						fmt.Sprintf("Panic in handler for %s %s", r.Method, r.URL.Path),
						"panic", fmt.Sprintf("%v", err),
						"stack", string(debug.Stack()),
					)
					util.JSONResponse(w, http.StatusInternalServerError, map[string]any{
						"message": "Internal Server Error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
