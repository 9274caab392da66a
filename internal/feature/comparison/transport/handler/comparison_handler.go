// Package handler はcomparisonフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/comparison/domain/entity"
	"coin_backend/internal/feature/comparison/transport/http/dto"
	"coin_backend/internal/feature/comparison/usecase"
)

// ComparisonUsecase はコイン比較操作のユースケースを定義します。
type ComparisonUsecase interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]entity.CoinComparison, error)
	Get(ctx context.Context, userID, id uint) (*entity.CoinComparison, error)
	Create(ctx context.Context, userID uint, in usecase.Input) (*entity.CoinComparison, error)
	Update(ctx context.Context, userID, id uint, in usecase.Input) (*entity.CoinComparison, error)
	Delete(ctx context.Context, userID, id uint) error
	ByPair(ctx context.Context, userID uint, coin1, coin2 string) ([]entity.CoinComparison, error)
	Recent(ctx context.Context, userID uint) ([]entity.CoinComparison, error)
}

// ComparisonHandler はコイン比較のHTTPリクエストを処理します。
type ComparisonHandler struct {
	uc     ComparisonUsecase
	logger *zap.Logger
}

// NewComparisonHandler はComparisonHandlerの新しいインスタンスを生成します。
func NewComparisonHandler(uc ComparisonUsecase, logger *zap.Logger) *ComparisonHandler {
	return &ComparisonHandler{uc: uc, logger: logger}
}

// Register は /coin-comparisons 配下のルートを登録します。
func (h *ComparisonHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/by-pair", h.ByPair)
	g.GET("/recent", h.Recent)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ComparisonHandler) List(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	page := api.ParsePage(c)
	h.respond(c, http.StatusOK)(h.uc.List(c.Request.Context(), userID, page.Limit, page.Offset))
}

func (h *ComparisonHandler) Get(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK)(h.uc.Get(c.Request.Context(), userID, id))
}

func (h *ComparisonHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusCreated)(h.uc.Create(c.Request.Context(), userID, in))
}

func (h *ComparisonHandler) Update(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK)(h.uc.Update(c.Request.Context(), userID, id, in))
}

func (h *ComparisonHandler) Delete(c *gin.Context) {
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

// ByPair GET /coin-comparisons/by-pair?coin1=BTC&coin2=ETH
func (h *ComparisonHandler) ByPair(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK)(h.uc.ByPair(c.Request.Context(), userID, c.Query("coin1"), c.Query("coin2")))
}

// Recent GET /coin-comparisons/recent
func (h *ComparisonHandler) Recent(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK)(h.uc.Recent(c.Request.Context(), userID))
}

// respond は (値, error) をそのまま受け取ってレスポンスを書き込む関数を返します。
func (h *ComparisonHandler) respond(c *gin.Context, status int) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			api.WriteError(c, h.logger, err)
			return
		}
		c.JSON(status, v)
	}
}

func bind(c *gin.Context) (usecase.Input, bool) {
	var req dto.ComparisonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return usecase.Input{}, false
	}
	return usecase.Input{
		Coin1:  req.Coin1,
		Coin2:  req.Coin2,
		Price1: *req.Price1,
		Price2: *req.Price2,
	}, true
}
