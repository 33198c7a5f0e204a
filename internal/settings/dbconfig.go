package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	dbConfigMu     sync.RWMutex
	dbConfigValues = map[string]json.RawMessage{}
)

// StoreDBConfig replaces the cached settings snapshot.
func StoreDBConfig(values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for key, value := range values {
		next[strings.TrimSpace(key)] = append(json.RawMessage(nil), value...)
	}
	dbConfigMu.Lock()
	dbConfigValues = next
	dbConfigMu.Unlock()
}

// SetDBConfigValue updates a single cached setting.
func SetDBConfigValue(key string, value json.RawMessage) {
	dbConfigMu.Lock()
	dbConfigValues[strings.TrimSpace(key)] = append(json.RawMessage(nil), value...)
	dbConfigMu.Unlock()
}

// DBConfigValue returns the cached raw JSON for a setting key.
func DBConfigValue(key string) (json.RawMessage, bool) {
	dbConfigMu.RLock()
	defer dbConfigMu.RUnlock()
	value, ok := dbConfigValues[strings.TrimSpace(key)]
	if !ok || len(bytes.TrimSpace(value)) == 0 {
		return nil, false
	}
	return value, true
}

// LoadDBConfig reads every setting row into the cache.
func LoadDBConfig(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("settings: nil db")
	}
	var rows []models.Setting
	if errFind := conn.WithContext(ctx).Find(&rows).Error; errFind != nil {
		return fmt.Errorf("settings: load: %w", errFind)
	}
	values := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		values[row.Key] = json.RawMessage(row.Value)
	}
	StoreDBConfig(values)
	return nil
}

// DefaultBalanceAmount returns the starting balance for new users.
func DefaultBalanceAmount() decimal.Decimal {
	fallback := decimal.RequireFromString(DefaultBalance)
	raw, ok := DBConfigValue(DefaultBalanceKey)
	if !ok {
		return fallback
	}
	amount, okParse := parseDecimal(raw)
	if !okParse || amount.IsNegative() {
		return fallback
	}
	return amount
}

// parseDecimal accepts a JSON number or a numeric string.
func parseDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero, false
	}
	var asString string
	if errUnmarshal := json.Unmarshal(raw, &asString); errUnmarshal == nil {
		parsed, errParse := decimal.NewFromString(strings.TrimSpace(asString))
		if errParse != nil {
			return decimal.Zero, false
		}
		return parsed, true
	}
	parsed, errParse := decimal.NewFromString(string(raw))
	if errParse != nil {
		return decimal.Zero, false
	}
	return parsed, true
}
