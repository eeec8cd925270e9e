package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
)

type snapshotFetcher interface {
	Fetch(ctx context.Context, plan FetchPlan) (*models.Snapshot, error)
}

// InsightServiceConfig tunes the derived views.
type InsightServiceConfig struct {
	Location             *time.Location
	LeaderboardSize      int
	FeedSize             int
	FeedComponentLimit   int
	FeedAttendanceWindow int
	ActiveWindowDays     int
	ScopeByTeacher       bool
}

// InsightServiceParams groups constructor dependencies.
type InsightServiceParams struct {
	Fetcher snapshotFetcher
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  InsightServiceConfig
}

// InsightService runs the fetch → resolve → aggregate pipeline for every request.
// Nothing is cached between calls.
type InsightService struct {
	fetcher snapshotFetcher
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     InsightServiceConfig
}

// NewInsightService constructs an InsightService with sane defaults.
func NewInsightService(params InsightServiceParams) *InsightService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = 8
	}
	if cfg.FeedComponentLimit <= 0 {
		cfg.FeedComponentLimit = 5
	}
	if cfg.FeedAttendanceWindow <= 0 {
		cfg.FeedAttendanceWindow = 2
	}
	if cfg.ActiveWindowDays <= 0 {
		cfg.ActiveWindowDays = 7
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		fetcher: params.Fetcher,
		metrics: params.Metrics,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// resolved is one fetched snapshot together with its indices and audit result.
type resolved struct {
	snapshot  *models.Snapshot
	index     *ReferenceIndex
	integrity *dto.IntegrityReport
	warnings  []dto.Warning
	now       time.Time
}

func (s *InsightService) load(ctx context.Context, identity *models.Identity) (*resolved, error) {
	if s.fetcher == nil {
		return nil, appErrors.ErrStoreUnavailable
	}
	teacher := s.teacherScope(identity)
	snapshot, err := s.fetcher.Fetch(ctx, DefaultFetchPlan(teacher))
	if err != nil {
		return nil, err
	}
	if teacher != "" {
		snapshot = ScopeToTeacher(snapshot, teacher)
	}
	now := s.now().In(s.cfg.Location)
	idx := NewReferenceIndex(snapshot)
	report := AuditGrades(snapshot.Grades, idx, now)

	warnings := make([]dto.Warning, 0, len(snapshot.Failures)+1)
	for _, failure := range snapshot.Failures {
		warnings = append(warnings, dto.Warning{
			Kind:       dto.WarningTransport,
			Collection: string(failure.Collection),
			Message:    failure.Message,
		})
	}
	orphaned := 0
	if report != nil {
		orphaned = report.OrphanedCount
		warnings = append(warnings, dto.Warning{
			Kind:       dto.WarningIntegrity,
			Collection: string(models.CollectionGrades),
			Message:    fmt.Sprintf("%d grade(s) reference assignments that no longer exist", report.OrphanedCount),
		})
		s.logger.Info("orphaned grades detected", zap.Int("count", report.OrphanedCount))
	}
	s.metrics.RecordSnapshot(orphaned, len(snapshot.Failures) > 0)

	return &resolved{snapshot: snapshot, index: idx, integrity: report, warnings: warnings, now: now}, nil
}

func (s *InsightService) teacherScope(identity *models.Identity) string {
	if !s.cfg.ScopeByTeacher || identity == nil || identity.Role != models.RoleTeacher {
		return ""
	}
	return identity.Username
}

// TeacherDashboard returns KPIs, the top of the leaderboard, the activity feed and the
// integrity signal for the caller's scope.
func (s *InsightService) TeacherDashboard(ctx context.Context, identity *models.Identity) (*dto.TeacherDashboardResponse, error) {
	r, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	teacher := ""
	if identity != nil {
		teacher = identity.Username
	}
	return &dto.TeacherDashboardResponse{
		Teacher: teacher,
		Metrics: BuildTeacherMetrics(r.snapshot, r.index, r.now, TeacherMetricsOptions{
			Location:         s.cfg.Location,
			ActiveWindowDays: s.cfg.ActiveWindowDays,
		}),
		Leaderboard: TopLeaderboard(BuildLeaderboard(r.snapshot.Gamification, r.index), s.cfg.LeaderboardSize),
		Activity:    BuildActivityFeed(r.snapshot, r.index, r.now, s.feedOptions()),
		Integrity:   r.integrity,
		Warnings:    r.warnings,
		GeneratedAt: r.now,
	}, nil
}

// StudentDashboard returns the caller's own progress. It refuses to compute anything without
// an identity.
func (s *InsightService) StudentDashboard(ctx context.Context, identity *models.Identity) (*dto.StudentDashboardResponse, error) {
	if identity == nil || identity.Username == "" {
		return nil, appErrors.ErrSessionNotFound
	}
	return s.Progress(ctx, identity, identity.Username)
}

// Progress returns the progress of username. Students may only read their own.
func (s *InsightService) Progress(ctx context.Context, identity *models.Identity, username string) (*dto.StudentDashboardResponse, error) {
	if identity == nil || identity.Username == "" {
		return nil, appErrors.ErrSessionNotFound
	}
	if username == "" {
		username = identity.Username
	}
	if identity.Role == models.RoleStudent && username != identity.Username {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own progress")
	}
	// Ranking is global, so the student view never uses the teacher scope.
	r, err := s.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	leaderboard := BuildLeaderboard(r.snapshot.Gamification, r.index)
	progress := BuildStudentProgress(username, r.snapshot, r.index, leaderboard)
	if _, known := r.index.Student(username); !known && username == identity.Username && identity.FullName != "" {
		progress.FullName = identity.FullName
	}
	return &dto.StudentDashboardResponse{
		Progress:    progress,
		Warnings:    r.warnings,
		GeneratedAt: r.now,
	}, nil
}

// Leaderboard returns the top limit students; limit <= 0 uses the configured size.
func (s *InsightService) Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = s.cfg.LeaderboardSize
	}
	r, err := s.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	entries := BuildLeaderboard(r.snapshot.Gamification, r.index)
	return &dto.LeaderboardResponse{
		Entries:     TopLeaderboard(entries, limit),
		Total:       len(entries),
		Warnings:    r.warnings,
		GeneratedAt: r.now,
	}, nil
}

// Activity returns the merged activity feed for the caller's scope.
func (s *InsightService) Activity(ctx context.Context, identity *models.Identity) (*dto.ActivityResponse, error) {
	r, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &dto.ActivityResponse{
		Items:       BuildActivityFeed(r.snapshot, r.index, r.now, s.feedOptions()),
		Warnings:    r.warnings,
		GeneratedAt: r.now,
	}, nil
}

// Integrity returns the orphaned-grade audit for the caller's scope.
func (s *InsightService) Integrity(ctx context.Context, identity *models.Identity) (*dto.IntegrityResponse, error) {
	r, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &dto.IntegrityResponse{
		Report:      r.integrity,
		Warnings:    r.warnings,
		GeneratedAt: r.now,
	}, nil
}

func (s *InsightService) feedOptions() ActivityFeedOptions {
	return ActivityFeedOptions{
		Location:             s.cfg.Location,
		Size:                 s.cfg.FeedSize,
		ComponentLimit:       s.cfg.FeedComponentLimit,
		AttendanceWindowDays: s.cfg.FeedAttendanceWindow,
	}
}
