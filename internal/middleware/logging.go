package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"pennywise/internal/logger"
	"pennywise/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that logs each request with a
// time-ordered request ID, method, path, status code, latency, and client IP.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		log := logger.Get()
		log.Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
