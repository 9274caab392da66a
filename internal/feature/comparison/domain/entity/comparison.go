// Package entity defines the coin comparison record.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CoinComparison is a side-by-side price observation of two different coins.
type CoinComparison struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index:comparison_user_time,priority:1" json:"-"`
	Coin1     string          `gorm:"size:20;not null" json:"coin1"`
	Coin2     string          `gorm:"size:20;not null" json:"coin2"`
	Price1    decimal.Decimal `gorm:"column:coin1_price;type:decimal(20,6);not null" json:"coin1_price"`
	Price2    decimal.Decimal `gorm:"column:coin2_price;type:decimal(20,6);not null" json:"coin2_price"`
	Timestamp time.Time       `gorm:"column:comparison_date;not null;index:comparison_user_time,priority:2" json:"comparison_date"`
}

// TableName returns the table name for GORM.
func (CoinComparison) TableName() string {
	return "coin_comparisons"
}

// SameCoin reports whether a and b name the same coin, ignoring case.
func SameCoin(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Involves reports whether the comparison is between a and b in either order.
func (c CoinComparison) Involves(a, b string) bool {
	return (SameCoin(c.Coin1, a) && SameCoin(c.Coin2, b)) ||
		(SameCoin(c.Coin1, b) && SameCoin(c.Coin2, a))
}
