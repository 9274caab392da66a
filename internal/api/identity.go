package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jwtmw "coin_backend/internal/platform/jwt"
)

// CurrentUser returns the authenticated user id. When the auth middleware did
// not run it writes a 401 and returns false.
func CurrentUser(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return 0, false
	}
	return id, true
}
