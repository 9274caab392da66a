// Package entity defines the exchange-rate snapshot.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateSnapshot is a timestamped rate observation for a currency pair.
// Snapshots are shared by every user.
type ExchangeRateSnapshot struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	BaseCurrency   string          `gorm:"size:10;not null;index:rate_pair_time,priority:1" json:"base_currency"`
	TargetCurrency string          `gorm:"size:10;not null;index:rate_pair_time,priority:2" json:"target_currency"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	Timestamp      time.Time       `gorm:"not null;index:rate_pair_time,priority:3" json:"timestamp"`
}

// TableName returns the table name for GORM.
func (ExchangeRateSnapshot) TableName() string {
	return "exchange_rate_snapshots"
}

// Pair returns the base and target currencies.
func (s ExchangeRateSnapshot) Pair() (string, string) {
	return s.BaseCurrency, s.TargetCurrency
}

// ObservedAt returns the snapshot time.
func (s ExchangeRateSnapshot) ObservedAt() time.Time { return s.Timestamp }
