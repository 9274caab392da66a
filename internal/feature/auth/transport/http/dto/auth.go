// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"coin_backend/internal/feature/auth/domain/entity"
)

// SignupReq は/auth/signupエンドポイントのリクエストボディです。
// パスワード強度はユースケース側で検証します。
type SignupReq struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=4,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginReq は/auth/loginエンドポイントのリクエストボディです。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshReq represents the request for token refresh and logout.
type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// PasswordResetReq はパスワードリセット要求のリクエストボディです。
type PasswordResetReq struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmReq はパスワードリセット確定のリクエストボディです。
type PasswordResetConfirmReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserRes は登録済みユーザーのレスポンスです。
type UserRes struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserRes converts a user entity to its response shape.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
