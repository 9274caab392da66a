// Package handler はprofileフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/profile/domain/entity"
	"coin_backend/internal/feature/profile/transport/http/dto"
	"coin_backend/internal/feature/profile/usecase"
)

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	List(ctx context.Context, userID uint) ([]entity.Profile, error)
	Mine(ctx context.Context, userID uint) (*entity.Profile, error)
	Get(ctx context.Context, userID, id uint) (*entity.Profile, error)
	Create(ctx context.Context, userID uint, in usecase.Input) (*entity.Profile, error)
	Update(ctx context.Context, userID, id uint, in usecase.Input) (*entity.Profile, error)
	Delete(ctx context.Context, userID, id uint) error
}

// ProfileHandler はプロフィールのHTTPリクエストを処理します。
type ProfileHandler struct {
	uc     ProfileUsecase
	logger *zap.Logger
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(uc ProfileUsecase, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger}
}

// Register は /profiles 配下のルートを登録します。
func (h *ProfileHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/me", h.Me)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ProfileHandler) List(c *gin.Context) {
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

// Me GET /profiles/me
// プロフィールが存在しない場合は404を返します。
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	p, err := h.uc.Mine(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Get(c *gin.Context) {
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

func (h *ProfileHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.uc.Create(c.Request.Context(), userID, toInput(req))
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	var req dto.ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.uc.Update(c.Request.Context(), userID, id, toInput(req))
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
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

func toInput(req dto.ProfileReq) usecase.Input {
	return usecase.Input{DisplayName: req.DisplayName, Bio: req.Bio, Phone: req.Phone}
}
