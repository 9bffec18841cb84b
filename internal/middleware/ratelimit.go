package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/ratelimit"
)

// Rate-limit response headers.
const (
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// RateLimit applies a sliding-window policy keyed by client IP. A disabled
// limiter allows every request; Redis errors also fail open so a rate-limit
// outage never takes down the endpoints it guards.
func RateLimit(limiter *ratelimit.Limiter, policy string, m *Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), ClientIP(c.Request))
		if err != nil {
			log.Warn("Rate limit check failed, allowing request",
				logger.String("policy", policy),
				logger.Error(err),
			)
			c.Next()
			return
		}
		if res == nil || res.Allowed {
			c.Next()
			return
		}

		if m != nil {
			m.RateLimitRejectsTotal.WithLabelValues(policy).Inc()
		}
		c.Header(headerRemaining, strconv.Itoa(res.Remaining))
		c.Header(headerReset, strconv.FormatInt(res.Reset.Unix(), 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "rate limit exceeded",
		})
	}
}
