// Package dto はコイン比較APIのリクエスト形式を定義します。
package dto

import "github.com/shopspring/decimal"

// ComparisonReq はコイン比較の作成・更新リクエストです。
type ComparisonReq struct {
	Coin1  string           `json:"coin1" binding:"required,coinsymbol"`
	Coin2  string           `json:"coin2" binding:"required,coinsymbol"`
	Price1 *decimal.Decimal `json:"coin1_price" binding:"required"`
	Price2 *decimal.Decimal `json:"coin2_price" binding:"required"`
}
