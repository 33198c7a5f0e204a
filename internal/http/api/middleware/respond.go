package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/router-for-me/CourseMarket/internal/market"
	log "github.com/sirupsen/logrus"
)

func init() {
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		engine.RegisterTagNameFunc(market.JSONFieldName)
	}
}

// BindJSON decodes the request body into obj and checks its binding tags. On
// failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, obj any) bool {
	errBind := c.ShouldBindJSON(obj)
	if errBind == nil {
		return true
	}
	if errField := market.FromFieldErrors(errBind); errField != nil {
		RespondError(c, errField)
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
	return false
}

// RespondError maps a domain error to its HTTP status and JSON body.
func RespondError(c *gin.Context, err error) {
	var (
		validationErr *market.ValidationError
		fundsErr      *market.InsufficientFundsError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Field + " " + validationErr.Message})
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "insufficient funds",
			"balance":  fundsErr.Balance.StringFixed(2),
			"required": fundsErr.Required.StringFixed(2),
		})
	case errors.Is(err, market.ErrAlreadyEnrolled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already enrolled"})
	case errors.Is(err, market.ErrNegativeBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "balance cannot be negative"})
	case errors.Is(err, market.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, market.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, market.ErrNoGroupAvailable):
		log.WithError(err).Error("http: course has no groups")
		c.JSON(http.StatusConflict, gin.H{"error": "no group available"})
	default:
		log.WithError(err).WithField("request_id", RequestID(c)).Error("http: request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction failed"})
	}
}

// ParseID reads a positive numeric path parameter, writing a 400 on failure.
func ParseID(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
