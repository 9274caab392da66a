// Package entity defines an error log entry.
package entity

import "time"

// ErrorLogEntry is a recorded failure. UserID is nil for system-level errors.
type ErrorLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Source    string    `gorm:"size:100;not null;index" json:"source"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the table name for GORM.
func (ErrorLogEntry) TableName() string {
	return "error_logs"
}
