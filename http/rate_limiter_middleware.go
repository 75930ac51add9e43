package http

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// RateLimitMiddleware refuses requests from clients whose bucket is empty
// with 429 and a Retry-After header in whole seconds.
func RateLimitMiddleware(limiter *RateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				client = r.RemoteAddr
			}

			ok, retryAfter := limiter.Take(client)
			if !ok {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				logger.Debug("rate limit exceeded",
					zap.String("client", client),
					zap.String("path", r.URL.Path),
					zap.Duration("retry_after", retryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				respondError(w, logger, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
