package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"boletera/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware applies the rate limit matching the route class.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Fail open: a Redis hiccup must not block checkout traffic.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	// Internal routes first: they nest under /internal/ but mention the
	// resource in the path too.
	case strings.Contains(path, "/internal/"):
		return RateLimitTypeInternal

	// Provider callbacks retry aggressively; give them headroom.
	case strings.Contains(path, "/payments/webhook"),
		strings.Contains(path, "/payments/return"):
		return RateLimitTypeWebhook

	case strings.Contains(path, "/payments"):
		return RateLimitTypePayment

	case strings.Contains(path, "/holds"),
		strings.Contains(path, "/orders"):
		return RateLimitTypeCheckout

	default:
		return RateLimitTypeDefault
	}
}
