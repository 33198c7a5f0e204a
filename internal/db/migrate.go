package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/router-for-me/CourseMarket/internal/models"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Balance{},
		&models.Course{},
		&models.Lesson{},
		&models.Group{},
		&models.Subscription{},
		&models.GroupEnrollment{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIdx := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_group_enrollments_group_student
		ON group_enrollments (group_id, student_id)
	`).Error; errIdx != nil {
		return fmt.Errorf("db: create group enrollment index: %w", errIdx)
	}

	if errSeed := ensureSetting(conn, internalsettings.SiteNameKey, internalsettings.DefaultSiteName); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureSetting(conn, internalsettings.DefaultBalanceKey, internalsettings.DefaultBalance); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureSetting(conn, internalsettings.PurchaseRateLimitKey, internalsettings.DefaultPurchaseRateLimit); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureSetting(conn, internalsettings.LoginRateLimitKey, internalsettings.DefaultLoginRateLimit); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureSetting(conn, internalsettings.RateLimitRedisEnabledKey, false); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureSetting ensures a setting exists and defaults when empty.
func ensureSetting(conn *gorm.DB, key string, value any) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	rawValue := json.RawMessage(payload)

	var existing models.Setting
	if errFind := conn.Where("key = ?", key).First(&existing).Error; errFind == nil {
		trimmed := strings.TrimSpace(string(existing.Value))
		if len(existing.Value) == 0 || trimmed == "" || trimmed == "null" {
			if errUpdate := conn.Model(&existing).Updates(map[string]any{
				"value":      rawValue,
				"updated_at": time.Now().UTC(),
			}).Error; errUpdate != nil {
				return fmt.Errorf("db: update %s setting: %w", key, errUpdate)
			}
		}
		return nil
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query %s setting: %w", key, errFind)
	}

	setting := models.Setting{
		Key:       key,
		Value:     datatypes.JSON(rawValue),
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create %s setting: %w", key, errCreate)
	}
	return nil
}
