// Package handler はpreferenceフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/preference/domain/entity"
	"coin_backend/internal/feature/preference/transport/http/dto"
	"coin_backend/internal/feature/preference/usecase"
)

// PreferenceUsecase はユーザー設定操作のユースケースを定義します。
type PreferenceUsecase interface {
	List(ctx context.Context, userID uint) ([]entity.UserPreference, error)
	Get(ctx context.Context, userID, id uint) (*entity.UserPreference, error)
	Create(ctx context.Context, userID uint, in usecase.Input) (*entity.UserPreference, error)
	Update(ctx context.Context, userID, id uint, in usecase.Input) (*entity.UserPreference, error)
	Delete(ctx context.Context, userID, id uint) error
	AddFavorite(ctx context.Context, userID uint, coin string) (*entity.UserPreference, error)
	RemoveFavorite(ctx context.Context, userID uint, coin string) (*entity.UserPreference, error)
}

// PreferenceHandler はユーザー設定のHTTPリクエストを処理します。
type PreferenceHandler struct {
	uc     PreferenceUsecase
	logger *zap.Logger
}

// NewPreferenceHandler はPreferenceHandlerの新しいインスタンスを生成します。
func NewPreferenceHandler(uc PreferenceUsecase, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{uc: uc, logger: logger}
}

// Register は /preferences 配下のルートを登録します。
func (h *PreferenceHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/favorites", h.AddFavorite)
	g.DELETE("/favorites/:coin", h.RemoveFavorite)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *PreferenceHandler) List(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	list, err := h.uc.List(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	p, err := h.uc.Get(c.Request.Context(), userID, id)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PreferenceHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	p, err := h.uc.Create(c.Request.Context(), userID, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PreferenceHandler) Update(c *gin.Context) {
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
	p, err := h.uc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PreferenceHandler) Delete(c *gin.Context) {
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

// AddFavorite POST /preferences/favorites {"coin":"BTC"}
func (h *PreferenceHandler) AddFavorite(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.FavoriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.uc.AddFavorite(c.Request.Context(), userID, req.Coin)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveFavorite DELETE /preferences/favorites/:coin
func (h *PreferenceHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	p, err := h.uc.RemoveFavorite(c.Request.Context(), userID, c.Param("coin"))
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func bind(c *gin.Context) (usecase.Input, bool) {
	var req dto.PreferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return usecase.Input{}, false
	}
	return usecase.Input{
		PreferredCurrency:   req.PreferredCurrency,
		FavoriteCoins:       req.FavoriteCoins,
		NotifyOnPriceChange: req.NotifyOnPriceChange,
		NotifyThreshold:     req.NotifyThreshold,
	}, true
}
