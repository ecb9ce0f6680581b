package middleware

import (
	"net/http"

	"boletera/internal/shared/config"
	"boletera/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags each request with a correlation id so provider audit rows
// and logs can be joined back to the originating call.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// InternalOnly guards operational endpoints (expiry sweep, refunds) that are
// invoked by trusted internal callers, not end users. Caller identity is a
// shared service token; full user authentication lives outside this service.
func InternalOnly(cfg *config.Config) gin.HandlerFunc {
	token := cfg.InternalAPIToken
	return func(c *gin.Context) {
		if token == "" {
			// No token configured: only allow in development mode.
			if !cfg.IsDevelopment() {
				response.RespondJSON(c, "error", http.StatusForbidden, "internal endpoints disabled", nil, nil)
				c.Abort()
				return
			}
			c.Next()
			return
		}
		if c.GetHeader("X-Internal-Token") != token {
			response.RespondJSON(c, "error", http.StatusForbidden, "invalid internal token", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
