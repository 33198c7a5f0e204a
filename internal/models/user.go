package models

import "time"

// User represents a student or admin account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email     string `gorm:"type:varchar(250);not null;uniqueIndex"` // Unique login email.
	Username  string `gorm:"type:varchar(150);not null"`             // Display login name.
	FirstName string `gorm:"type:varchar(150)"`                      // Given name.
	LastName  string `gorm:"type:varchar(150)"`                      // Family name.
	Password  string `gorm:"type:text;not null"`                     // Hashed password.

	IsAdmin bool `gorm:"not null;default:false"` // Grants admin API access.
	Active  bool `gorm:"not null;default:true"`  // Whether the user can sign in.

	Balance *Balance `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owned balance.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
