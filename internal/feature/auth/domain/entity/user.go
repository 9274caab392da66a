// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is the login identifier. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Username is the public handle. It must be unique and at least 4 characters.
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`

	// Password is the bcrypt hash. Plaintext is never stored.
	Password string `gorm:"size:255;not null" json:"-"`

	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`

	// IsStaff grants read access to every user's error log.
	IsStaff bool `gorm:"not null;default:false" json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
