package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/middleware"
	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
	"github.com/noah-isme/classroom-insight-api/pkg/response"
)

const maxLeaderboardLimit = 100

type insightService interface {
	TeacherDashboard(ctx context.Context, identity *models.Identity) (*dto.TeacherDashboardResponse, error)
	StudentDashboard(ctx context.Context, identity *models.Identity) (*dto.StudentDashboardResponse, error)
	Progress(ctx context.Context, identity *models.Identity, username string) (*dto.StudentDashboardResponse, error)
	Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
	Activity(ctx context.Context, identity *models.Identity) (*dto.ActivityResponse, error)
	Integrity(ctx context.Context, identity *models.Identity) (*dto.IntegrityResponse, error)
}

// InsightHandler exposes the dashboard views.
type InsightHandler struct {
	service insightService
}

// NewInsightHandler constructs the handler.
func NewInsightHandler(service insightService) *InsightHandler {
	return &InsightHandler{service: service}
}

// Teacher godoc
// @Summary Teacher dashboard
// @Description KPIs, leaderboard, activity feed and integrity report for the caller's classes.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/teacher [get]
func (h *InsightHandler) Teacher(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	result, err := h.service.TeacherDashboard(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}

// Student godoc
// @Summary Student dashboard
// @Description Progress of the authenticated student.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *InsightHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	result, err := h.service.StudentDashboard(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}

// StudentProgress godoc
// @Summary Progress of one student
// @Description Teachers and admins may read any student; students only themselves.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param username path string true "Student username"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{username}/progress [get]
func (h *InsightHandler) StudentProgress(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	result, err := h.service.Progress(c.Request.Context(), middleware.IdentityFromContext(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}

// Leaderboard godoc
// @Summary Gamification leaderboard
// @Tags Leaderboard
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leaderboard [get]
func (h *InsightHandler) Leaderboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	limit, err := queryLimit(c, maxLeaderboardLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}

// Activity godoc
// @Summary Recent activity feed
// @Tags Activity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *InsightHandler) Activity(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	result, err := h.service.Activity(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}

// Integrity godoc
// @Summary Orphaned grade report
// @Tags Integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /integrity [get]
func (h *InsightHandler) Integrity(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	result, err := h.service.Integrity(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, len(result.Warnings))
}
