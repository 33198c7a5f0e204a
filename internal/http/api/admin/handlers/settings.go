package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/models"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingHandler manages runtime settings values.
type SettingHandler struct {
	db *gorm.DB // Database handle for settings.
}

// NewSettingHandler constructs a settings handler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

var nonNegativeIntSettingKeys = map[string]struct{}{
	internalsettings.PurchaseRateLimitKey: {},
	internalsettings.LoginRateLimitKey:    {},
	internalsettings.RateLimitRedisDBKey:  {},
}

var nonNegativeDecimalSettingKeys = map[string]struct{}{
	internalsettings.DefaultBalanceKey: {},
}

var errNonNegativeIntegerValue = errors.New("value must be a non-negative integer")
var errNonNegativeAmountValue = errors.New("value must be a non-negative amount")

// List returns all settings sorted by key.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatSetting(&row))
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// Get returns a setting by key.
func (h *SettingHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	var setting models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&setting).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatSetting(&setting))
}

// updateSettingRequest captures the payload for updating a setting.
type updateSettingRequest struct {
	Value json.RawMessage `json:"value"` // New JSON value.
}

// Update updates a setting value and refreshes the cached snapshot.
func (h *SettingHandler) Update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	var body updateSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errValidate := validateSettingValue(key, body.Value); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Setting{}).Where("key = ?", key).
		Update("value", datatypes.JSON(body.Value))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errRefresh := internalsettings.LoadDBConfig(c.Request.Context(), h.db); errRefresh != nil {
		log.WithError(errRefresh).Error("admin: refresh settings snapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh settings snapshot failed"})
		return
	}
	log.WithField("key", key).Info("admin: setting updated")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func validateSettingValue(key string, value json.RawMessage) error {
	if _, ok := nonNegativeIntSettingKeys[key]; ok {
		if _, okParse := parseNonNegativeInt(value); !okParse {
			return errNonNegativeIntegerValue
		}
		return nil
	}
	if _, ok := nonNegativeDecimalSettingKeys[key]; ok {
		amount, errParse := parseDecimalValue(value)
		if errParse != nil || amount.IsNegative() {
			return errNonNegativeAmountValue
		}
	}
	return nil
}

func parseNonNegativeInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var parsedInt int
	if errUnmarshalInt := json.Unmarshal(raw, &parsedInt); errUnmarshalInt == nil {
		return parsedInt, parsedInt >= 0
	}
	var parsedString string
	if errUnmarshalString := json.Unmarshal(raw, &parsedString); errUnmarshalString == nil {
		parsed, errParse := strconv.Atoi(strings.TrimSpace(parsedString))
		if errParse != nil {
			return 0, false
		}
		return parsed, parsed >= 0
	}
	var parsedFloat float64
	if errUnmarshalFloat := json.Unmarshal(raw, &parsedFloat); errUnmarshalFloat == nil {
		if math.IsNaN(parsedFloat) || math.IsInf(parsedFloat, 0) {
			return 0, false
		}
		if parsedFloat < 0 || parsedFloat != math.Trunc(parsedFloat) {
			return 0, false
		}
		return int(parsedFloat), true
	}
	return 0, false
}

// parseDecimalValue accepts a JSON number or numeric string.
func parseDecimalValue(raw json.RawMessage) (decimal.Decimal, error) {
	var amount decimal.Decimal
	if errUnmarshal := json.Unmarshal(bytes.TrimSpace(raw), &amount); errUnmarshal != nil {
		return decimal.Zero, errUnmarshal
	}
	return amount, nil
}

// formatSetting formats a setting row into response JSON.
func formatSetting(s *models.Setting) gin.H {
	return gin.H{
		"key":        s.Key,
		"value":      json.RawMessage(s.Value),
		"updated_at": s.UpdatedAt,
	}
}
