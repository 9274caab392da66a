// Package entity defines the user activity entry.
package entity

import "time"

// ActivityEntry records one action a user performed. Entries are never
// updated or deleted.
type ActivityEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:activity_user_time,priority:1" json:"-"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	Timestamp time.Time `gorm:"not null;index:activity_user_time,priority:2" json:"timestamp"`
}

// TableName returns the table name for GORM.
func (ActivityEntry) TableName() string {
	return "user_activities"
}
