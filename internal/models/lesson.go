package models

import "time"

// Lesson belongs to exactly one course.
type Lesson struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CourseID uint64 `gorm:"not null;index"`             // Owning course ID.
	Title    string `gorm:"type:varchar(250);not null"` // Lesson title.
	Link     string `gorm:"type:varchar(250);not null"` // Lesson URL.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
