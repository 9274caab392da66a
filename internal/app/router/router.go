// Package router はアプリケーションのHTTPルーティングを組み立てます。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authhandler "coin_backend/internal/feature/auth/transport/handler"
	platformhandler "coin_backend/internal/platform/http/handler"
	"coin_backend/internal/platform/http/middleware"
	jwtmw "coin_backend/internal/platform/jwt"
)

// Registrar は自身のルートをグループに登録するハンドラーです。
type Registrar interface {
	Register(g *gin.RouterGroup)
}

// Resource は /api 配下にマウントするハンドラーです。
type Resource struct {
	Path    string
	Handler Registrar
}

// Deps はルーター構築に必要な依存関係です。
type Deps struct {
	Logger      *zap.Logger
	JWTSecret   string
	CORSOrigins []string
	Health      *platformhandler.HealthHandler
	Auth        *authhandler.AuthHandler
	Resources   []Resource
}

// NewRouter は全ルートを登録したGinエンジンを返します。
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)

	auth := r.Group("/auth")
	{
		// 新規ユーザー登録
		auth.POST("/signup", d.Auth.Signup)
		// ログイン（JWT 発行）
		auth.POST("/login", d.Auth.Login)
		auth.POST("/refresh", d.Auth.Refresh)
		auth.POST("/logout", d.Auth.Logout)
		auth.POST("/password-reset", d.Auth.RequestPasswordReset)
		auth.POST("/password-reset/confirm", d.Auth.ConfirmPasswordReset)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	api := r.Group("/api")
	api.Use(jwtmw.AuthRequired(d.JWTSecret))
	for _, res := range d.Resources {
		res.Handler.Register(api.Group(res.Path))
	}

	return r
}
