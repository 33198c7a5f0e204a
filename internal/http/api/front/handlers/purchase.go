package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/enrollment"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
)

// PurchaseHandler serves course purchases.
type PurchaseHandler struct {
	coordinator *enrollment.Coordinator
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(coordinator *enrollment.Coordinator) *PurchaseHandler {
	return &PurchaseHandler{coordinator: coordinator}
}

// Purchase buys the course for the caller and assigns a group.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	confirmation, errPurchase := h.coordinator.Purchase(c.Request.Context(), userID, courseID)
	if errPurchase != nil {
		middleware.RespondError(c, errPurchase)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"subscription": gin.H{
			"id":           confirmation.SubscriptionID,
			"course_id":    confirmation.CourseID,
			"group_id":     confirmation.GroupID,
			"group_number": confirmation.GroupNumber,
			"charged":      confirmation.Charged.StringFixed(2),
			"balance":      confirmation.Balance.StringFixed(2),
			"enrolled_at":  confirmation.EnrolledAt,
		},
	})
}
