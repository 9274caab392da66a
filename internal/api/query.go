package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"coin_backend/internal/shared/apperr"
)

const (
	// DefaultLimit is the page size used when the client sends none.
	DefaultLimit = 100
	// MaxLimit caps client supplied page sizes.
	MaxLimit = 500
	// MaxDays caps client supplied day windows (about ten years).
	MaxDays = 3650
)

// Page is the limit/offset pair parsed from the query string.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads ?limit= and ?offset=. Out-of-range values fall back to defaults.
func ParsePage(c *gin.Context) Page {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// ParseDays reads a day window in [1, MaxDays] from the query string.
func ParseDays(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > MaxDays {
		return 0, apperr.Validation("%s must be an integer between 1 and %d", key, MaxDays)
	}
	return days, nil
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return uint(id), nil
}
