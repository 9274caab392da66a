// Package entity defines a user's scheduled price scrape and its state machine.
package entity

import (
	"errors"
	"time"
)

// State is the derived scheduling state of a ScheduledScrape.
type State string

const (
	StateInactive State = "inactive"
	StatePending  State = "active-pending"
	StateDue      State = "active-due"
)

const (
	// DefaultIntervalMinutes is used when a schedule is created without an interval.
	DefaultIntervalMinutes = 60
	// DefaultCurrency is used when a schedule is created without a currency.
	DefaultCurrency = "USD"
)

// ErrRunBeforeLastRun is returned by MarkRun when time would move backwards.
var ErrRunBeforeLastRun = errors.New("run time is earlier than the last run")

// ScheduledScrape is a periodic price fetch of one coin in one currency.
type ScheduledScrape struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	Coin            string     `gorm:"size:20;not null" json:"coin"`
	Currency        string     `gorm:"size:10;not null" json:"currency"`
	IntervalMinutes int        `gorm:"not null" json:"interval_minutes"`
	IsActive        bool       `gorm:"index;not null" json:"is_active"`
	LastRun         *time.Time `json:"last_run"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (ScheduledScrape) TableName() string {
	return "scheduled_scrapes"
}

// Interval returns the configured interval as a duration.
func (s *ScheduledScrape) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// State returns the scheduling state at now. An active schedule that has
// never run is due.
func (s *ScheduledScrape) State(now time.Time) State {
	if !s.IsActive {
		return StateInactive
	}
	if s.LastRun == nil || now.Sub(*s.LastRun) >= s.Interval() {
		return StateDue
	}
	return StatePending
}

// IsDue reports whether the schedule should run at now.
func (s *ScheduledScrape) IsDue(now time.Time) bool {
	return s.State(now) == StateDue
}

// NextRun returns when the schedule becomes due, or nil when inactive.
func (s *ScheduledScrape) NextRun(now time.Time) *time.Time {
	switch s.State(now) {
	case StateInactive:
		return nil
	case StateDue:
		return &now
	}
	next := s.LastRun.Add(s.Interval())
	return &next
}

// Toggle flips the active flag and returns the new value.
func (s *ScheduledScrape) Toggle() bool {
	s.IsActive = !s.IsActive
	return s.IsActive
}

// MarkRun records a run at now. It is the only mutator of LastRun.
func (s *ScheduledScrape) MarkRun(now time.Time) error {
	if s.LastRun != nil && now.Before(*s.LastRun) {
		return ErrRunBeforeLastRun
	}
	t := now.UTC()
	s.LastRun = &t
	return nil
}
