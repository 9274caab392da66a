// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/feature/auth/transport/http/dto"
	"coin_backend/internal/feature/auth/usecase"
	"coin_backend/internal/shared/apperr"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*entity.User, error)
	Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta usecase.ClientMeta) (*usecase.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	logger *zap.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール・ユーザー名重複時は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("signup validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Warn("signup failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		api.WriteError(c, h.logger, err)
		return
	}
	h.logger.Info("user signup successful", zap.Uint("user_id", user.ID), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 認証失敗の詳細はユーザー列挙攻撃を防ぐためクライアントに返しません。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("login validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		h.logger.Warn("login failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		if apperr.Status(err) == http.StatusInternalServerError {
			api.WriteError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: usecase.ErrInvalidCredentials.Error()})
		return
	}
	h.logger.Info("user login successful", zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Refresh はリフレッシュトークンをローテーションします。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, clientMeta(c))
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout はリフレッシュトークンを失効させます。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestPasswordReset はリセットメールの送信を受け付けます。
// 登録有無にかかわらず202を返します。
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, api.MessageResponse{Message: "if the email is registered, a reset link has been sent"})
}

// ConfirmPasswordReset は新しいパスワードを設定します。
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		if !errors.Is(err, usecase.ErrInvalidResetToken) {
			h.logger.Warn("password reset confirm failed", zap.Error(err))
		}
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "password has been reset"})
}

func clientMeta(c *gin.Context) usecase.ClientMeta {
	return usecase.ClientMeta{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func tokenResponse(p *usecase.TokenPair) api.TokenResponse {
	return api.TokenResponse{Token: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresIn: p.ExpiresIn}
}
