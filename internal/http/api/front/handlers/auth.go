package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/config"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/security"
	log "github.com/sirupsen/logrus"
)

// AuthHandler issues tokens and serves the caller's profile.
type AuthHandler struct {
	accounts *accounts.Service
	jwtCfg   config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *accounts.Service, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{accounts: svc, jwtCfg: jwtCfg}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !middleware.BindJSON(c, &body) {
		return
	}

	user, errAuth := h.accounts.Authenticate(c.Request.Context(), body.Email, body.Password)
	if errAuth != nil {
		if errors.Is(errAuth, accounts.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		middleware.RespondError(c, errAuth)
		return
	}

	token, expiresAt, errIssue := security.IssueUserToken(h.jwtCfg.Secret, user.ID, user.IsAdmin, h.jwtCfg.Expiry)
	if errIssue != nil {
		log.WithError(errIssue).Error("front: issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Me returns the caller's profile and balance.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, errProfile := h.accounts.Profile(c.Request.Context(), userID)
	if errProfile != nil {
		middleware.RespondError(c, errProfile)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"full_name":  user.FullName(),
		"is_admin":   user.IsAdmin,
		"balance":    user.Balance.Amount.StringFixed(2),
	})
}
