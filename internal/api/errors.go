package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/shared/apperr"
)

// WriteError maps err to a status code and writes the JSON error body.
// Server-side failures are logged with the request path; the client only
// sees a generic message for them.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperr.Status(err)
	if status >= 500 && logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: apperr.Message(err)})
}
