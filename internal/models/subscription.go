package models

import "time"

// Subscription records a student's purchase of a course.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	StudentID uint64 `gorm:"not null;uniqueIndex:idx_subscriptions_student_course"`       // Subscribed user ID.
	CourseID  uint64 `gorm:"not null;uniqueIndex:idx_subscriptions_student_course;index"` // Purchased course ID.

	EnrolledAt time.Time `gorm:"not null"` // Purchase timestamp.
}
