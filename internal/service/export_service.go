package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
	"github.com/noah-isme/classroom-insight-api/pkg/export"
)

type insightReader interface {
	Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
	Progress(ctx context.Context, identity *models.Identity, username string) (*dto.StudentDashboardResponse, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders derived views into downloadable documents.
type ExportService struct {
	insights insightReader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(insights insightReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{insights: insights, csv: csv, pdf: pdf, logger: logger}
}

var leaderboardHeaders = []string{"rank", "username", "full_name", "class", "points", "level", "badges"}

// LeaderboardCSV renders the leaderboard as CSV.
func (s *ExportService) LeaderboardCSV(ctx context.Context, limit int) ([]byte, error) {
	board, err := s.insights.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: leaderboardHeaders}
	for _, entry := range board.Entries {
		data.Rows = append(data.Rows, map[string]string{
			"rank":      strconv.Itoa(entry.Rank),
			"username":  entry.Username,
			"full_name": entry.FullName,
			"class":     entry.ClassName,
			"points":    strconv.Itoa(entry.Points),
			"level":     strconv.Itoa(entry.Level),
			"badges":    strconv.Itoa(entry.BadgeCount),
		})
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		s.logger.Error("leaderboard csv render failed", zap.Error(err))
		return nil, err
	}
	return payload, nil
}

// ProgressPDF renders a student's progress report.
func (s *ExportService) ProgressPDF(ctx context.Context, identity *models.Identity, username string) ([]byte, error) {
	result, err := s.insights.Progress(ctx, identity, username)
	if err != nil {
		return nil, err
	}
	progress := result.Progress
	data := export.Dataset{
		Summary: []export.Field{
			{Label: "Student", Value: fmt.Sprintf("%s (%s)", progress.FullName, progress.Username)},
			{Label: "Class", Value: progress.ClassName},
			{Label: "Attendance rate", Value: fmt.Sprintf("%d%%", progress.AttendanceRate)},
			{Label: "Average grade", Value: strconv.FormatFloat(progress.AverageGrade, 'f', 2, 64)},
			{Label: "Completed assignments", Value: strconv.Itoa(progress.CompletedAssignments)},
			{Label: "Points / level", Value: fmt.Sprintf("%d / %d", progress.Points, progress.Level)},
			{Label: "Rank", Value: strconv.Itoa(progress.Rank)},
		},
	}
	if len(progress.Badges) > 0 {
		data.Headers = []string{"Badge", "Icon", "Points"}
		for _, badge := range progress.Badges {
			data.Rows = append(data.Rows, map[string]string{
				"Badge":  badge.Name,
				"Icon":   badge.Icon,
				"Points": strconv.Itoa(badge.PointValue),
			})
		}
	}
	for _, warning := range result.Warnings {
		data.Notes = append(data.Notes, fmt.Sprintf("Warning (%s): %s", warning.Kind, warning.Message))
	}
	data.Notes = append(data.Notes, "Generated "+result.GeneratedAt.Format("2006-01-02 15:04 MST"))

	title := "Progress report " + strings.TrimSpace(progress.FullName)
	payload, err := s.pdf.Render(data, title)
	if err != nil {
		s.logger.Error("progress pdf render failed", zap.String("username", progress.Username), zap.Error(err))
		return nil, err
	}
	return payload, nil
}
