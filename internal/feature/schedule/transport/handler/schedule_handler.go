// Package handler はscheduleフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/schedule/domain/entity"
	"coin_backend/internal/feature/schedule/transport/http/dto"
	"coin_backend/internal/feature/schedule/usecase"
)

// ScheduleUsecase はスケジュール操作のユースケースを定義します。
type ScheduleUsecase interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]entity.ScheduledScrape, error)
	Get(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error)
	Create(ctx context.Context, userID uint, in usecase.Input) (*entity.ScheduledScrape, error)
	Update(ctx context.Context, userID, id uint, in usecase.Input) (*entity.ScheduledScrape, error)
	Delete(ctx context.Context, userID, id uint) error
	Toggle(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error)
	MarkRun(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error)
	Due(ctx context.Context, userID uint) ([]entity.ScheduledScrape, error)
}

// ScheduleHandler はスケジュールのHTTPリクエストを処理します。
type ScheduleHandler struct {
	uc     ScheduleUsecase
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleHandler はScheduleHandlerの新しいインスタンスを生成します。
func NewScheduleHandler(uc ScheduleUsecase, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{uc: uc, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Register は /schedule-scrapes 配下のルートを登録します。
func (h *ScheduleHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/due", h.Due)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/toggle", h.Toggle)
	g.POST("/:id/mark-run", h.MarkRun)
}

func (h *ScheduleHandler) List(c *gin.Context) {
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
	c.JSON(http.StatusOK, dto.NewScheduleList(rows, h.now()))
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	h.withOwned(c, http.StatusOK, h.uc.Get)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	s, err := h.uc.Create(c.Request.Context(), userID, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewScheduleRes(s, h.now()))
}

func (h *ScheduleHandler) Update(c *gin.Context) {
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
	s, err := h.uc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewScheduleRes(s, h.now()))
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
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

// Toggle POST /schedule-scrapes/:id/toggle
func (h *ScheduleHandler) Toggle(c *gin.Context) {
	h.withOwned(c, http.StatusOK, h.uc.Toggle)
}

// MarkRun POST /schedule-scrapes/:id/mark-run
// last_run をサーバー時刻で更新します。
func (h *ScheduleHandler) MarkRun(c *gin.Context) {
	h.withOwned(c, http.StatusOK, h.uc.MarkRun)
}

// Due GET /schedule-scrapes/due
func (h *ScheduleHandler) Due(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	rows, err := h.uc.Due(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewScheduleList(rows, h.now()))
}

// withOwned は :id のスケジュールに op を適用して結果を返します。
func (h *ScheduleHandler) withOwned(c *gin.Context, status int, op func(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error)) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	s, err := op(c.Request.Context(), userID, id)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(status, dto.NewScheduleRes(s, h.now()))
}

func bind(c *gin.Context) (usecase.Input, bool) {
	var req dto.ScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return usecase.Input{}, false
	}
	return usecase.Input{
		Coin:            req.Coin,
		Currency:        req.Currency,
		IntervalMinutes: req.IntervalMinutes,
		IsActive:        req.IsActive,
	}, true
}
