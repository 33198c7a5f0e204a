package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/shopspring/decimal"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	accounts *accounts.Service
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *accounts.Service) *UserHandler {
	return &UserHandler{accounts: svc}
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=250"`
	Username  string `json:"username" binding:"max=150"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required"`
	IsAdmin   bool   `json:"is_admin"`
}

// Create creates a user with a starting balance.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !middleware.BindJSON(c, &body) {
		return
	}

	user, errCreate := h.accounts.CreateUser(c.Request.Context(), accounts.NewUser{
		Email:     body.Email,
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
		IsAdmin:   body.IsAdmin,
	})
	if errCreate != nil {
		middleware.RespondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"is_admin":   user.IsAdmin,
		"balance":    user.Balance.Amount.StringFixed(2),
	})
}

// creditBalanceRequest defines the request body for a balance top-up.
type creditBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreditBalance adds points to a user's balance.
func (h *UserHandler) CreditBalance(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	var body creditBalanceRequest
	if !middleware.BindJSON(c, &body) {
		return
	}

	balance, errCredit := h.accounts.CreditBalance(c.Request.Context(), id, body.Amount)
	if errCredit != nil {
		middleware.RespondError(c, errCredit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": balance.UserID,
		"balance": balance.Amount.StringFixed(2),
	})
}
