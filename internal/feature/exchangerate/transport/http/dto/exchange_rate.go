// Package dto は為替レートAPIのリクエスト形式を定義します。
package dto

import "github.com/shopspring/decimal"

// ExchangeRateReq はスナップショットの記録リクエストです。
type ExchangeRateReq struct {
	BaseCurrency   string           `json:"base_currency" binding:"required,currency"`
	TargetCurrency string           `json:"target_currency" binding:"required,currency"`
	Rate           *decimal.Decimal `json:"rate" binding:"required"`
}
