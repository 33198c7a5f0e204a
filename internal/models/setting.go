package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores a runtime configuration value as JSON.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key   string         `gorm:"type:varchar(255);not null;uniqueIndex"` // Setting key.
	Value datatypes.JSON `gorm:"type:jsonb"`                              // JSON-encoded value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
