package middleware

import (
	"net/http"

	"github.com/robgibbons/express-unchained/internal/util"
	"github.com/robgibbons/express-unchained/models"
)

// RealIP resolves the client IP through the configured trusted proxy and
// header lists and stores it in the request context. Forwarding headers
// from untrusted peers are ignored.
func RealIP(logger models.Logger, security models.SecurityConfig) models.Middleware {
	util.ValidateTrustedHeadersAndProxies(logger, security.TrustedHeaders, security.TrustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := util.ExtractClientIP(r, security.TrustedHeaders, security.TrustedProxies)
			if err != nil {
				logger.Error("Failed to extract client IP", "error", err, "remoteAddr", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}

			ctx := contextWithClientIP(r.Context(), ip.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
