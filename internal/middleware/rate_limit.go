package middleware

import (
	"strconv"

	"ask-mark/internal/apierror"
	"ask-mark/internal/domain"
	"ask-mark/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit admits or rejects each request by client IP. Limiter errors admit the request.
func RateLimit(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.Max())
	retryAfter := strconv.Itoa(int(limiter.Window().Seconds()))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter failed, admitting request", zap.String("ip", ip), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		if !allowed {
			c.Header("Retry-After", retryAfter)
			apierror.Abort(c, log, domain.ErrRateLimited, "")
			return
		}
		c.Next()
	}
}
