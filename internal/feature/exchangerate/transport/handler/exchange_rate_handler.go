// Package handler はexchangerateフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/exchangerate/domain/entity"
	"coin_backend/internal/feature/exchangerate/transport/http/dto"
	"coin_backend/internal/feature/exchangerate/usecase"
)

// ExchangeRateUsecase は為替レート操作のユースケースを定義します。
type ExchangeRateUsecase interface {
	List(ctx context.Context, limit, offset int) ([]entity.ExchangeRateSnapshot, error)
	Get(ctx context.Context, id uint) (*entity.ExchangeRateSnapshot, error)
	Create(ctx context.Context, in usecase.Input) (*entity.ExchangeRateSnapshot, error)
	Latest(ctx context.Context) ([]entity.ExchangeRateSnapshot, error)
	History(ctx context.Context, base, target string, days int) ([]entity.ExchangeRateSnapshot, error)
}

// ExchangeRateHandler は為替レートのHTTPリクエストを処理します。
type ExchangeRateHandler struct {
	uc     ExchangeRateUsecase
	logger *zap.Logger
}

// NewExchangeRateHandler はExchangeRateHandlerの新しいインスタンスを生成します。
func NewExchangeRateHandler(uc ExchangeRateUsecase, logger *zap.Logger) *ExchangeRateHandler {
	return &ExchangeRateHandler{uc: uc, logger: logger}
}

// Register は /exchange-rates 配下のルートを登録します。
func (h *ExchangeRateHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/latest", h.Latest)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)
}

func (h *ExchangeRateHandler) List(c *gin.Context) {
	page := api.ParsePage(c)
	rows, err := h.uc.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ExchangeRateHandler) Get(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	s, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ExchangeRateHandler) Create(c *gin.Context) {
	var req dto.ExchangeRateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	s, err := h.uc.Create(c.Request.Context(), usecase.Input{
		Base:   req.BaseCurrency,
		Target: req.TargetCurrency,
		Rate:   *req.Rate,
	})
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// Latest GET /exchange-rates/latest
func (h *ExchangeRateHandler) Latest(c *gin.Context) {
	rows, err := h.uc.Latest(c.Request.Context())
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// History GET /exchange-rates/history?base=USD&target=EUR&days=30
// base と target は必須です。
func (h *ExchangeRateHandler) History(c *gin.Context) {
	days, err := api.ParseDays(c, "days", usecase.DefaultHistoryDays)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	rows, err := h.uc.History(c.Request.Context(), c.Query("base"), c.Query("target"), days)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
