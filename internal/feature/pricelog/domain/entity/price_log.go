// Package entity defines the price log entry recorded for a user's coin.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an entry is recorded without a currency.
const DefaultCurrency = "USD"

// PriceLogEntry is one observed coin price owned by a user.
type PriceLogEntry struct {
	ID       uint
	UserID   uint
	Coin     string          // upper-case symbol, e.g. "BTC"
	Price    decimal.Decimal // >= 0
	Currency string
	Date     time.Time
}

// CoinSymbol returns the coin symbol.
func (e PriceLogEntry) CoinSymbol() string { return e.Coin }

// ObservedAt returns when the price was observed.
func (e PriceLogEntry) ObservedAt() time.Time { return e.Date }
