package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const contextRequestID = "requestID"

// RequestLogger tags each request with an ID and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if userID := UserID(c); userID != 0 {
			entry = entry.WithField("user_id", userID)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("http request")
		case status >= 400:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

// RequestID returns the ID assigned by RequestLogger.
func RequestID(c *gin.Context) string {
	return c.GetString(contextRequestID)
}
