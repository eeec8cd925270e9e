package service

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// ActivityFeedOptions bounds each feed source and the merged result.
type ActivityFeedOptions struct {
	Location             *time.Location
	Size                 int
	ComponentLimit       int
	AttendanceWindowDays int
}

func (o ActivityFeedOptions) withDefaults() ActivityFeedOptions {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Size <= 0 {
		o.Size = 8
	}
	if o.ComponentLimit <= 0 {
		o.ComponentLimit = 5
	}
	if o.AttendanceWindowDays <= 0 {
		o.AttendanceWindowDays = 2
	}
	return o
}

var epoch = time.Unix(0, 0).UTC()

var activityTypeOrder = map[string]int{
	dto.ActivityGrade:      0,
	dto.ActivityAttendance: 1,
	dto.ActivityAssignment: 2,
}

// BuildActivityFeed takes the top items of each source, then merges and re-sorts the union
// newest first.
func BuildActivityFeed(snapshot *models.Snapshot, idx *ReferenceIndex, now time.Time, opts ActivityFeedOptions) []dto.ActivityItem {
	opts = opts.withDefaults()
	items := []dto.ActivityItem{}
	if snapshot == nil {
		return items
	}
	items = append(items, recentGrades(snapshot.Grades, idx, opts.ComponentLimit)...)
	items = append(items, recentAttendance(snapshot.Attendance, idx, now, opts)...)
	items = append(items, upcomingAssignments(snapshot.Assignments, idx, now, opts.ComponentLimit)...)

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		if items[i].Type != items[j].Type {
			return activityTypeOrder[items[i].Type] < activityTypeOrder[items[j].Type]
		}
		return items[i].ID < items[j].ID
	})
	if len(items) > opts.Size {
		items = items[:opts.Size]
	}
	return items
}

func recentGrades(grades []models.GradeRecord, idx *ReferenceIndex, limit int) []dto.ActivityItem {
	sorted := append([]models.GradeRecord(nil), grades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].GradedAt.Equal(sorted[j].GradedAt) {
			return sorted[i].GradedAt.After(sorted[j].GradedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	items := make([]dto.ActivityItem, 0, len(sorted))
	for _, grade := range sorted {
		title := "Unknown Assignment"
		className := ""
		if assignment, ok := idx.Assignment(grade.AssignmentID); ok {
			title = assignment.Title
			className = idx.ClassName(assignment.ClassID)
		}
		items = append(items, dto.ActivityItem{
			Type:            dto.ActivityGrade,
			ID:              grade.ID,
			Title:           title,
			Description:     fmt.Sprintf("%s received %s points", idx.StudentName(grade.StudentUsername), strconv.FormatFloat(grade.Points, 'f', -1, 64)),
			StudentUsername: grade.StudentUsername,
			ClassName:       className,
			Timestamp:       orEpoch(grade.GradedAt),
		})
	}
	return items
}

func recentAttendance(records []models.AttendanceRecord, idx *ReferenceIndex, now time.Time, opts ActivityFeedOptions) []dto.ActivityItem {
	from := startOfDay(now, opts.Location).AddDate(0, 0, -(opts.AttendanceWindowDays - 1))
	until := startOfDay(now, opts.Location).AddDate(0, 0, 1)
	window := make([]models.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if record.Date.IsZero() || record.Date.Before(from) || !record.Date.Before(until) {
			continue
		}
		window = append(window, record)
	}
	sort.SliceStable(window, func(i, j int) bool {
		if !window[i].Date.Equal(window[j].Date) {
			return window[i].Date.After(window[j].Date)
		}
		if window[i].StudentUsername != window[j].StudentUsername {
			return window[i].StudentUsername < window[j].StudentUsername
		}
		return window[i].ID < window[j].ID
	})
	if len(window) > opts.ComponentLimit {
		window = window[:opts.ComponentLimit]
	}
	items := make([]dto.ActivityItem, 0, len(window))
	for _, record := range window {
		className := idx.ClassName(record.ClassID)
		items = append(items, dto.ActivityItem{
			Type:            dto.ActivityAttendance,
			ID:              record.ID,
			Title:           idx.StudentName(record.StudentUsername),
			Description:     fmt.Sprintf("marked %s in %s", record.Status, className),
			StudentUsername: record.StudentUsername,
			ClassName:       className,
			Timestamp:       record.Date,
		})
	}
	return items
}

func upcomingAssignments(assignments []models.AssignmentRecord, idx *ReferenceIndex, now time.Time, limit int) []dto.ActivityItem {
	upcoming := make([]models.AssignmentRecord, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.DueDate.IsZero() || assignment.DueDate.Before(now) {
			continue
		}
		upcoming = append(upcoming, assignment)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].DueDate.Equal(upcoming[j].DueDate) {
			return upcoming[i].DueDate.Before(upcoming[j].DueDate)
		}
		return upcoming[i].ID < upcoming[j].ID
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	items := make([]dto.ActivityItem, 0, len(upcoming))
	for _, assignment := range upcoming {
		className := idx.ClassName(assignment.ClassID)
		items = append(items, dto.ActivityItem{
			Type:        dto.ActivityAssignment,
			ID:          assignment.ID,
			Title:       assignment.Title,
			Description: fmt.Sprintf("due %s for %s", assignment.DueDate.Format("2006-01-02"), className),
			ClassName:   className,
			Timestamp:   assignment.DueDate,
		})
	}
	return items
}

func orEpoch(t time.Time) time.Time {
	if t.IsZero() {
		return epoch
	}
	return t
}
