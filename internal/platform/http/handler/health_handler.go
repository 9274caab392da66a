// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Check は依存サービス（DB、Redisなど）の疎通を確認します。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler は指定されたチェックを実行するHealthHandlerを生成します。
func NewHealthHandler(logger *zap.Logger, checks ...Check) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, logger: logger}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// いずれかの依存サービスに接続できない場合は 503 を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	result := gin.H{"status": "ok"}
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		deps := gin.H{}
		for _, chk := range h.checks {
			if err := chk.Ping(ctx); err != nil {
				h.logger.Warn("health check failed", zap.String("check", chk.Name), zap.Error(err))
				deps[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				continue
			}
			deps[chk.Name] = "ok"
		}
		result["checks"] = deps
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, result)
}
