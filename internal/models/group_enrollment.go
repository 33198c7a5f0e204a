package models

import "time"

// GroupEnrollment assigns a subscribed student to one group of the course.
type GroupEnrollment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID   uint64 `gorm:"not null;index"` // Assigned group ID.
	StudentID uint64 `gorm:"not null;index"` // Assigned user ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
