package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit defines a fixed-window limit for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements per-IP fixed-window rate limiting backed by Redis.
// Optional: only wired when a Redis connection is configured.
type RateLimiter struct {
	client *redis.Client
	limits map[string]RateLimit
	logger zerolog.Logger
}

// NewRateLimiter creates a rate limiter with per-endpoint write limits.
// Read endpoints are unlimited; polling clients hit them constantly.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"POST /messages":       {60, time.Minute},
			"POST /upload":         {20, time.Minute},
			"POST /download-video": {5, time.Minute},
		},
	}
}

// Middleware enforces the configured limits. Redis failures fail open:
// losing rate limiting must not take message posting down with it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := rl.limits[r.Method+" "+r.URL.Path]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s %s", clientIP(r), r.Method, r.URL.Path)

		// Incr and ExpireNX run in one pipeline so the counter can never
		// exist without a TTL; a counter with no expiry would block the
		// client forever once the limit is reached.
		pipe := rl.client.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.ExpireNX(r.Context(), key, limit.Window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			rl.logger.Warn().Err(err).Msg("rate limiter unavailable, failing open")
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > int64(limit.Requests) {
			w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP; chi's RealIP middleware has already
// folded forwarded headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
