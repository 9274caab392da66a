// Package dto は操作履歴APIのリクエスト形式を定義します。
package dto

// ActivityReq は操作履歴の記録リクエストです。
type ActivityReq struct {
	Action string `json:"action" binding:"required,max=255"`
}
