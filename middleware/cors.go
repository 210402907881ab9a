package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robgibbons/express-unchained/models"
)

// CORS applies the configured cross-origin policy on every response and
// short-circuits OPTIONS preflight requests. Wildcard subdomain entries
// ("*.example.com") are honored; credentials combined with a wildcard
// origin are refused per the CORS spec.
func CORS(config models.CORSConfig) models.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyCORS(config, w, r)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func applyCORS(config models.CORSConfig, w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	// Required for caches when echoing origin
	w.Header().Add("Vary", "Origin")

	// Spec violation guard: credentials + wildcard
	if config.AllowCredentials && slices.Contains(config.AllowedOrigins, "*") {
		return
	}

	// Origin not allowed
	if !isOriginAllowed(origin, config.AllowedOrigins) {
		if r.Method == http.MethodOptions {
			writePreflightHeaders(config, w)
		}
		return
	}

	// ---- Allowed origin ----
	w.Header().Set("Access-Control-Allow-Origin", origin)

	if config.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	if len(config.ExposedHeaders) > 0 {
		w.Header().Set(
			"Access-Control-Expose-Headers",
			strings.Join(config.ExposedHeaders, ", "),
		)
	}

	if r.Method == http.MethodOptions {
		writePreflightHeaders(config, w)
	}
}

func writePreflightHeaders(config models.CORSConfig, w http.ResponseWriter) {
	w.Header().Set(
		"Access-Control-Allow-Methods",
		strings.Join(config.AllowedMethods, ", "),
	)
	w.Header().Set(
		"Access-Control-Allow-Headers",
		strings.Join(config.AllowedHeaders, ", "),
	)
	w.Header().Set(
		"Access-Control-Max-Age",
		strconv.FormatInt(int64(config.MaxAge/time.Second), 10),
	)
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			return true
		}
		if allowed == origin {
			return true
		}
		if strings.HasPrefix(allowed, "*.") &&
			strings.HasSuffix(origin, strings.TrimPrefix(allowed, "*")) {
			return true
		}
	}
	return false
}
