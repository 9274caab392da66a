// Package events defines messages passed between features and out of the process.
package events

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceAlert is raised when a scheduled scrape observes a price move at or
// above the owner's notification threshold.
type PriceAlert struct {
	UserID        uint            `json:"user_id"`
	Coin          string          `json:"coin"`
	Currency      string          `json:"currency"`
	Previous      decimal.Decimal `json:"previous"`
	Current       decimal.Decimal `json:"current"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	ObservedAt    time.Time       `json:"observed_at"`
}

// NewPriceAlert fills ChangePercent from previous and current. The percent is
// zero when previous is zero.
func NewPriceAlert(userID uint, coin, currency string, previous, current decimal.Decimal, at time.Time) PriceAlert {
	pct := decimal.Zero
	if !previous.IsZero() {
		pct = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return PriceAlert{
		UserID:        userID,
		Coin:          coin,
		Currency:      currency,
		Previous:      previous,
		Current:       current,
		ChangePercent: pct,
		ObservedAt:    at,
	}
}

// Key returns the partition key used when publishing the alert.
func (a PriceAlert) Key() string {
	return fmt.Sprintf("%d:%s", a.UserID, a.Coin)
}
