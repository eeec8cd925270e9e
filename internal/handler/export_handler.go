package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-insight-api/internal/middleware"
	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
	"github.com/noah-isme/classroom-insight-api/pkg/response"
)

type exportService interface {
	LeaderboardCSV(ctx context.Context, limit int) ([]byte, error)
	ProgressPDF(ctx context.Context, identity *models.Identity, username string) ([]byte, error)
}

// ExportHandler serves downloadable renditions of the dashboard views.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// LeaderboardCSV godoc
// @Summary Download the leaderboard as CSV
// @Tags Exports
// @Produce text/csv
// @Security BearerAuth
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {file} file
// @Router /exports/leaderboard.csv [get]
func (h *ExportHandler) LeaderboardCSV(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	limit, err := queryLimit(c, maxLeaderboardLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.LeaderboardCSV(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "leaderboard.csv", "text/csv; charset=utf-8", payload)
}

// ProgressPDF godoc
// @Summary Download a progress report as PDF
// @Tags Exports
// @Produce application/pdf
// @Security BearerAuth
// @Param username query string false "Student username (defaults to the caller)"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/progress.pdf [get]
func (h *ExportHandler) ProgressPDF(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	identity := middleware.IdentityFromContext(c)
	username := c.Query("username")
	payload, err := h.service.ProgressPDF(c.Request.Context(), identity, username)
	if err != nil {
		response.Error(c, err)
		return
	}
	if username == "" && identity != nil {
		username = identity.Username
	}
	response.Attachment(c, fmt.Sprintf("progress-%s.pdf", username), "application/pdf", payload)
}
