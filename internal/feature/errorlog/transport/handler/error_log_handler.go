// Package handler はerrorlogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/api"
	"coin_backend/internal/feature/errorlog/domain/entity"
	"coin_backend/internal/feature/errorlog/transport/http/dto"
	"coin_backend/internal/feature/errorlog/usecase"
	"coin_backend/internal/feature/reporting"
	jwtmw "coin_backend/internal/platform/jwt"
)

// ErrorLogUsecase はエラーログ操作のユースケースを定義します。
type ErrorLogUsecase interface {
	List(ctx context.Context, v usecase.Viewer, limit, offset int) ([]entity.ErrorLogEntry, error)
	Get(ctx context.Context, v usecase.Viewer, id uint) (*entity.ErrorLogEntry, error)
	Create(ctx context.Context, userID *uint, source, message string) (*entity.ErrorLogEntry, error)
	Recent(ctx context.Context, v usecase.Viewer) ([]entity.ErrorLogEntry, error)
	Summary(ctx context.Context, v usecase.Viewer, days int) ([]reporting.Count, error)
}

// ErrorLogHandler はエラーログのHTTPリクエストを処理します。
type ErrorLogHandler struct {
	uc     ErrorLogUsecase
	logger *zap.Logger
}

// NewErrorLogHandler はErrorLogHandlerの新しいインスタンスを生成します。
func NewErrorLogHandler(uc ErrorLogUsecase, logger *zap.Logger) *ErrorLogHandler {
	return &ErrorLogHandler{uc: uc, logger: logger}
}

// Register は /error-logs 配下のルートを登録します。
func (h *ErrorLogHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/recent", h.Recent)
	g.GET("/summary", h.Summary)
	g.GET("/:id", h.Get)
}

func viewer(c *gin.Context) (usecase.Viewer, bool) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return usecase.Viewer{}, false
	}
	return usecase.Viewer{UserID: userID, Staff: jwtmw.IsStaff(c)}, true
}

func (h *ErrorLogHandler) List(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	page := api.ParsePage(c)
	rows, err := h.uc.List(c.Request.Context(), v, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ErrorLogHandler) Get(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, err := api.ParseID(c)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	e, err := h.uc.Get(c.Request.Context(), v, id)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Create POST /error-logs
// 作成したログの所有者はリクエストユーザーです。
func (h *ErrorLogHandler) Create(c *gin.Context) {
	userID, ok := api.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ErrorLogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	e, err := h.uc.Create(c.Request.Context(), &userID, req.Source, req.Message)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Recent GET /error-logs/recent
func (h *ErrorLogHandler) Recent(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	rows, err := h.uc.Recent(c.Request.Context(), v)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Summary GET /error-logs/summary?days=7
func (h *ErrorLogHandler) Summary(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	days, err := api.ParseDays(c, "days", usecase.DefaultSummaryDays)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	counts, err := h.uc.Summary(c.Request.Context(), v, days)
	if err != nil {
		api.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
