// Package dto は価格ログAPIのリクエスト/レスポンス形式を定義します。
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/pricelog/domain/entity"
)

// PriceLogReq は価格ログの作成・更新リクエストです。
type PriceLogReq struct {
	Coin     string           `json:"coin" binding:"required,coinsymbol"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Currency string           `json:"currency" binding:"omitempty,currency"`
	Date     *time.Time       `json:"date"`
}

// PriceLogRes は価格ログのレスポンスです。
type PriceLogRes struct {
	ID       uint            `json:"id"`
	Coin     string          `json:"coin"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
}

// NewPriceLogRes はエンティティをレスポンスに変換します。
func NewPriceLogRes(e *entity.PriceLogEntry) PriceLogRes {
	return PriceLogRes{
		ID:       e.ID,
		Coin:     e.Coin,
		Price:    e.Price,
		Currency: e.Currency,
		Date:     e.Date,
	}
}

// NewPriceLogList はエンティティのスライスをレスポンスに変換します。
func NewPriceLogList(rows []entity.PriceLogEntry) []PriceLogRes {
	out := make([]PriceLogRes, 0, len(rows))
	for i := range rows {
		out = append(out, NewPriceLogRes(&rows[i]))
	}
	return out
}
