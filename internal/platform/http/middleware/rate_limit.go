package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"acquisitions/internal/shared/ratelimiter"
)

// RateLimit rejects clients that exceed l with 429, keyed by client IP.
func RateLimit(l *ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !l.Allow(key) {
			secs := int(math.Ceil(l.RetryAfter(key).Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
