package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-insight-api/internal/middleware"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
	"github.com/noah-isme/classroom-insight-api/pkg/response"
)

// respond writes data with the degraded/warning metadata the client needs to render banners.
func respond(c *gin.Context, status int, data interface{}, warnings int) {
	middleware.SetWarnings(c, warnings)
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}

type limitQuery struct {
	Limit *int `form:"limit" binding:"omitempty,gt=0"`
}

// queryLimit binds the optional positive limit query parameter and clamps it to max.
// A missing limit is zero, meaning the configured default.
func queryLimit(c *gin.Context, max int) (int, error) {
	var query limitQuery
	if err := c.ShouldBindQuery(&query); err != nil || query.Limit == nil && c.Query("limit") != "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
	}
	if query.Limit == nil {
		return 0, nil
	}
	value := *query.Limit
	if max > 0 && value > max {
		value = max
	}
	return value, nil
}
