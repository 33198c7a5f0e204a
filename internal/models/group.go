package models

import "time"

// Group is one of the fixed study groups provisioned for a course.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CourseID    uint64 `gorm:"not null;uniqueIndex:idx_groups_course_number"` // Owning course ID.
	GroupNumber int    `gorm:"not null;uniqueIndex:idx_groups_course_number"` // Number within the course (1..N).

	Enrollments []GroupEnrollment `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"` // Group members.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// TableName avoids the GROUPS keyword in SQLite and PostgreSQL.
func (Group) TableName() string {
	return "course_groups"
}
