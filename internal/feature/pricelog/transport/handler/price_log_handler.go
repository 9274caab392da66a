// Package handler はpricelogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/pricelog/domain/entity"
	"coin_backend/internal/feature/pricelog/transport/http/dto"
	"coin_backend/internal/feature/pricelog/usecase"
)

// PriceLogUsecase は価格ログ操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PriceLogUsecase interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]entity.PriceLogEntry, error)
	Get(ctx context.Context, userID, id uint) (*entity.PriceLogEntry, error)
	Create(ctx context.Context, userID uint, in usecase.Input) (*entity.PriceLogEntry, error)
	Update(ctx context.Context, userID, id uint, in usecase.Input) (*entity.PriceLogEntry, error)
	Delete(ctx context.Context, userID, id uint) error
	ByCoin(ctx context.Context, userID uint, coin string) ([]entity.PriceLogEntry, error)
	PriceHistory(ctx context.Context, userID uint, coin string, days int) ([]entity.PriceLogEntry, error)
}

// PriceLogHandler は価格ログのHTTPリクエストを処理します。
type PriceLogHandler struct {
	uc     PriceLogUsecase
	logger *zap.Logger
}

// NewPriceLogHandler はPriceLogHandlerの新しいインスタンスを生成します。
func NewPriceLogHandler(uc PriceLogUsecase, logger *zap.Logger) *PriceLogHandler {
	return &PriceLogHandler{uc: uc, logger: logger}
}

// Register は /scrape-logs 配下のルートを登録します。
func (h *PriceLogHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/by-coin", h.ByCoin)
	g.GET("/price-history", h.PriceHistory)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List GET /scrape-logs?limit=&offset=
func (h *PriceLogHandler) List(c *gin.Context) {
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
	c.JSON(http.StatusOK, dto.NewPriceLogList(rows))
}

// Get GET /scrape-logs/:id
func (h *PriceLogHandler) Get(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	e, err := h.uc.Get(c.Request.Context(), userID, id)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceLogRes(e))
}

// Create POST /scrape-logs
func (h *PriceLogHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	e, err := h.uc.Create(c.Request.Context(), userID, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPriceLogRes(e))
}

// Update PUT /scrape-logs/:id
func (h *PriceLogHandler) Update(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	e, err := h.uc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceLogRes(e))
}

// Delete DELETE /scrape-logs/:id
func (h *PriceLogHandler) Delete(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	if err := h.uc.Delete(c.Request.Context(), userID, id); err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ByCoin GET /scrape-logs/by-coin?coin=BTC
// coin が未指定の場合は400を返します。
func (h *PriceLogHandler) ByCoin(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	rows, err := h.uc.ByCoin(c.Request.Context(), userID, c.Query("coin"))
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceLogList(rows))
}

// PriceHistory GET /scrape-logs/price-history?coin=BTC&days=30
func (h *PriceLogHandler) PriceHistory(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	days, err := api.ParseDays(c, "days", usecase.DefaultHistoryDays)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	rows, err := h.uc.PriceHistory(c.Request.Context(), userID, c.Query("coin"), days)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceLogList(rows))
}

func (h *PriceLogHandler) bind(c *gin.Context) (usecase.Input, bool) {
	var req dto.PriceLogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return usecase.Input{}, false
	}
	return usecase.Input{
		Coin:     req.Coin,
		Price:    *req.Price,
		Currency: req.Currency,
		Date:     req.Date,
	}, true
}
