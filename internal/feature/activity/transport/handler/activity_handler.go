// Package handler はactivityフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/activity/domain/entity"
	"coin_backend/internal/feature/activity/transport/http/dto"
	"coin_backend/internal/feature/activity/usecase"
	"coin_backend/internal/feature/reporting"
)

// ActivityUsecase は操作履歴のユースケースを定義します。
type ActivityUsecase interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]entity.ActivityEntry, error)
	Create(ctx context.Context, userID uint, action string) (*entity.ActivityEntry, error)
	Recent(ctx context.Context, userID uint) ([]entity.ActivityEntry, error)
	Summary(ctx context.Context, userID uint, days int) ([]reporting.Count, error)
}

// ActivityHandler は操作履歴のHTTPリクエストを処理します。
// 更新・削除のエンドポイントはありません。
type ActivityHandler struct {
	uc     ActivityUsecase
	logger *zap.Logger
}

// NewActivityHandler はActivityHandlerの新しいインスタンスを生成します。
func NewActivityHandler(uc ActivityUsecase, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{uc: uc, logger: logger}
}

// Register は /user-activities 配下のルートを登録します。
func (h *ActivityHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/recent", h.Recent)
	g.GET("/summary", h.Summary)
}

func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	page := api.ParsePage(c)
	rows, err := h.uc.List(c.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	e, err := h.uc.Create(c.Request.Context(), userID, req.Action)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Recent GET /user-activities/recent
func (h *ActivityHandler) Recent(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	rows, err := h.uc.Recent(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Summary GET /user-activities/summary?days=7
func (h *ActivityHandler) Summary(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	days, err := api.ParseDays(c, "days", usecase.DefaultSummaryDays)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	counts, err := h.uc.Summary(c.Request.Context(), userID, days)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
