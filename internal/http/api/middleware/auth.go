// Package middleware holds gin middleware and helpers shared by the front and
// admin APIs.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/config"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/security"
	"github.com/router-for-me/CourseMarket/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	contextUserID  = "userID"
	contextIsAdmin = "isAdmin"
)

// UserAuth validates bearer tokens and loads the caller into the context.
func UserAuth(st store.Store, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, errFind := st.Users().Get(c.Request.Context(), claims.UserID)
		if errFind != nil {
			if errors.Is(errFind, market.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			log.WithError(errFind).Error("auth: load user failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set(contextUserID, user.ID)
		c.Set(contextIsAdmin, user.IsAdmin)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin flag. It must run after UserAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID or 0.
func UserID(c *gin.Context) uint64 {
	raw, ok := c.Get(contextUserID)
	if !ok {
		return 0
	}
	id, _ := raw.(uint64)
	return id
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(contextIsAdmin)
}
