// Package entity defines the user profile.
package entity

import "time"

// Profile is the public face of a user. Each user has at most one.
type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName *string   `gorm:"size:100;uniqueIndex" json:"display_name"`
	Bio         string    `gorm:"type:text" json:"bio"`
	Phone       string    `gorm:"size:20" json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
