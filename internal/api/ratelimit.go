package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readnestapp/readnest-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use, keyed by client IP.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// ratePerInterval: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRateLimit rejects the request with a 429 when the client IP has
// exhausted its allowance for credential endpoints.
func (s *Server) checkAuthRateLimit(ip string) error {
	if s.authRateLimiter == nil || ip == "" {
		return nil
	}
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("rate limit exceeded", "ip", ip)
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}
