package middleware

import (
	"github.com/go-chi/httprate"

	"github.com/robgibbons/express-unchained/models"
)

// RateLimit limits requests per client IP using httprate's sliding window
// counter. Limits are enforced per instance; distributed counting is out
// of scope.
func RateLimit(config models.RateLimitConfig) models.Middleware {
	return httprate.LimitByIP(config.RequestLimit, config.WindowLength)
}
