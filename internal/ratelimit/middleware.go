package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DecisionFunc resolves the limit for the current request.
type DecisionFunc func(c *gin.Context, cfg SettingsConfig) Decision

// Middleware rejects requests over the resolved limit with 429. Limiter errors
// let the request through.
func Middleware(m *Manager, resolve DecisionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || resolve == nil {
			c.Next()
			return
		}
		decision := resolve(c, m.Settings())
		if decision.Limit <= 0 {
			c.Next()
			return
		}
		result, errAllow := m.Allow(c.Request.Context(), decision)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit: check failed")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			retryAfter := int(result.Reset.Sub(m.nowFn()).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
