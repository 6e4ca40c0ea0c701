package middleware

import (
	"campusEvents/app/echo-server/metrics"
	"net/http"
	"strconv"
	"sync"
	"time"

	jsonres "campusEvents/pkg/response"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per authenticated user. Buckets
// idle for longer than an hour are dropped by Cleanup.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*rateLimiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewUserRateLimiter allows perMinute requests per user per minute, with the
// whole minute available as burst.
func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &UserRateLimiter{
		limiters: make(map[uint]*rateLimiterEntry),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (rl *UserRateLimiter) Allow(userID uint) bool {
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.limiters[userID]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (rl *UserRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-time.Hour)
	for id, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, id)
		}
	}
}

// RunCleanup calls Cleanup every interval until stop is closed.
func (rl *UserRateLimiter) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-stop:
			return
		}
	}
}

// RateLimitPerUser must run after the auth middleware.
func RateLimitPerUser(rl *UserRateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			if !rl.Allow(userID) {
				metrics.RecommendRateLimited.Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.rate)))
				return c.JSON(http.StatusTooManyRequests, jsonres.Error(
					"TOO_MANY_REQUESTS", "Rate limit exceeded", nil,
				))
			}

			return next(c)
		}
	}
}

func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 {
		return 60
	}
	s := int(1 / float64(r))
	if s < 1 {
		return 1
	}
	return s
}
