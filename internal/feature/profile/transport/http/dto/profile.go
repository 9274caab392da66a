// Package dto はプロフィールAPIのリクエスト形式を定義します。
package dto

// ProfileReq はプロフィールの作成・更新リクエストです。
type ProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=100"`
	Bio         string `json:"bio" binding:"max=2000"`
	Phone       string `json:"phone" binding:"max=20"`
}
