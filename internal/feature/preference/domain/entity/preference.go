// Package entity defines the per-user preference record, its favorite-coin
// set and the price-change notification rule.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is the preferred currency of a new preference.
	DefaultCurrency = "USD"
)

// DefaultThreshold is the percent change that triggers a notification by default.
var DefaultThreshold = decimal.NewFromInt(5)

// UserPreference holds one user's display and notification settings.
type UserPreference struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	UserID              uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	PreferredCurrency   string          `gorm:"size:10;not null" json:"preferred_currency"`
	FavoriteCoins       FavoriteCoins   `gorm:"type:text;serializer:json" json:"favorite_coins"`
	NotifyOnPriceChange bool            `gorm:"not null" json:"notify_on_price_change"`
	NotifyThreshold     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"notify_threshold"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (UserPreference) TableName() string {
	return "user_preferences"
}

// NewDefault returns the preference a user gets before changing anything.
func NewDefault(userID uint) *UserPreference {
	return &UserPreference{
		UserID:              userID,
		PreferredCurrency:   DefaultCurrency,
		FavoriteCoins:       FavoriteCoins{},
		NotifyOnPriceChange: true,
		NotifyThreshold:     DefaultThreshold,
	}
}

// ShouldNotify applies the user's notification settings to a price change.
func (p *UserPreference) ShouldNotify(previous, next decimal.Decimal) bool {
	return ShouldNotify(previous, next, p.NotifyThreshold, p.NotifyOnPriceChange)
}

// ShouldNotify reports whether a move from previous to next is at least
// threshold percent. A zero previous price notifies on any non-zero new
// price; a negative previous price never notifies.
func ShouldNotify(previous, next, threshold decimal.Decimal, enabled bool) bool {
	if !enabled || previous.IsNegative() {
		return false
	}
	if previous.IsZero() {
		return !next.IsZero()
	}
	change := next.Sub(previous).Abs().Div(previous).Mul(decimal.NewFromInt(100))
	return change.GreaterThanOrEqual(threshold)
}

// FavoriteCoins is an insertion-ordered set of upper-case coin symbols.
type FavoriteCoins []string

// NormalizeCoin trims and upper-cases a symbol.
func NormalizeCoin(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin))
}

// Contains reports whether coin is in the set, ignoring case.
func (f FavoriteCoins) Contains(coin string) bool {
	coin = NormalizeCoin(coin)
	for _, c := range f {
		if c == coin {
			return true
		}
	}
	return false
}

// Add appends coin unless it is empty or already present. It reports whether
// the set changed.
func (f *FavoriteCoins) Add(coin string) bool {
	coin = NormalizeCoin(coin)
	if coin == "" || f.Contains(coin) {
		return false
	}
	*f = append(*f, coin)
	return true
}

// Remove deletes coin from the set keeping the order of the rest. It reports
// whether the set changed.
func (f *FavoriteCoins) Remove(coin string) bool {
	coin = NormalizeCoin(coin)
	for i, c := range *f {
		if c == coin {
			*f = append((*f)[:i:i], (*f)[i+1:]...)
			return true
		}
	}
	return false
}
