package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course represents a purchasable course.
type Course struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Author    string          `gorm:"type:varchar(250);not null"`            // Author name.
	Title     string          `gorm:"type:varchar(250);not null"`            // Course title.
	StartDate time.Time       `gorm:"not null"`                              // Course start date and time.
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // Price in points.
	IsActive  bool            `gorm:"not null;default:false"`                // Whether the course is open.

	Lessons []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"` // Related lessons.
	Groups  []Group  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"` // Provisioned groups.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
