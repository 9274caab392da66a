// Package dto はエラーログAPIのリクエスト形式を定義します。
package dto

// ErrorLogReq はエラーログの作成リクエストです。記録時刻はサーバーが設定します。
type ErrorLogReq struct {
	Source  string `json:"source" binding:"required,max=100"`
	Message string `json:"message" binding:"required"`
}
