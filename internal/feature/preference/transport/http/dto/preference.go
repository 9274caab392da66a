// Package dto はユーザー設定APIのリクエスト形式を定義します。
package dto

import "github.com/shopspring/decimal"

// PreferenceReq はユーザー設定の作成・更新リクエストです。省略した項目は変更しません。
type PreferenceReq struct {
	PreferredCurrency   *string          `json:"preferred_currency" binding:"omitempty,currency"`
	FavoriteCoins       []string         `json:"favorite_coins" binding:"omitempty,dive,coinsymbol"`
	NotifyOnPriceChange *bool            `json:"notify_on_price_change"`
	NotifyThreshold     *decimal.Decimal `json:"notify_threshold"`
}

// FavoriteReq はお気に入りコイン追加リクエストです。
type FavoriteReq struct {
	Coin string `json:"coin" binding:"required,coinsymbol"`
}
