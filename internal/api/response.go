package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/pkg/logging"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// pagination is the parsed page/limit query pair
type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePagination reads page and limit from the query string, clamping both
// to sane bounds
func parsePagination(c *gin.Context) pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return pagination{Page: page, Limit: limit}
}

// totalPages returns the page count for a total at the given page size
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// respondOK writes a success envelope with one named entity
func respondOK(c *gin.Context, status int, key string, value interface{}, message string) {
	body := gin.H{"success": true, key: value}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondMessage writes a success envelope with only a message
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// respondPage writes a success envelope with a list and pagination metadata
func respondPage(c *gin.Context, key string, items interface{}, total int64, p pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		key:           items,
		"total":       total,
		"totalPages":  totalPages(total, p.Limit),
		"currentPage": p.Page,
	})
}

// respondError translates a core error into its HTTP status and a flat
// failure envelope. Internal causes are logged, never returned to clients.
func respondError(c *gin.Context, err error) {
	kind := core.KindOf(err)
	status := core.HTTPStatus(kind)

	message := err.Error()
	if kind == core.KindInternal || kind == core.KindUpstream {
		logging.GetLogger().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// parseID reads an int64 path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, core.Validationf("invalid %s", name))
		return 0, false
	}
	return id, true
}
