package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc extracts the rate limit key from a request. An empty key falls back to the client IP.
type KeyFunc func(c *gin.Context) string

// Middleware creates a rate limiting middleware keyed by client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return KeyedMiddleware(limiter, nil)
}

// KeyedMiddleware creates a rate limiting middleware with a custom key function,
// e.g. the authenticated admin so that one admin cannot starve the review queue.
func KeyedMiddleware(limiter *RateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = keyFunc(c)
		}
		if key == "" {
			key = c.ClientIP()
		}

		limit := strconv.Itoa(limiter.Limit())

		if !limiter.Allow(key) {
			resetTime := limiter.GetResetTime(key)
			retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded. Try again later.",
				"code":       "RATE_LIMITED",
				"retryAfter": retryAfter,
				"resetTime":  resetTime.Format(time.RFC3339),
			})
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))
		c.Header("X-RateLimit-Reset", limiter.GetResetTime(key).Format(time.RFC3339))

		c.Next()
	}
}
