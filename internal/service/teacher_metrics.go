package service

import (
	"strings"
	"time"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// TeacherMetricsOptions tunes the time windows of the teacher dashboard.
type TeacherMetricsOptions struct {
	Location         *time.Location
	ActiveWindowDays int
}

// BuildTeacherMetrics computes dashboard KPIs over an already scoped snapshot.
// Every count is order independent; missing collections simply contribute zero.
func BuildTeacherMetrics(snapshot *models.Snapshot, idx *ReferenceIndex, now time.Time, opts TeacherMetricsOptions) dto.TeacherMetrics {
	metrics := dto.TeacherMetrics{}
	if snapshot == nil {
		return metrics
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	window := opts.ActiveWindowDays
	if window <= 0 {
		window = 7
	}

	metrics.TotalClasses = len(snapshot.Classes)
	metrics.TotalStudents = len(snapshot.Students)
	metrics.TotalAssignments = len(snapshot.Assignments)

	var sum float64
	var valid int
	graded := map[string]map[string]struct{}{}
	for _, grade := range snapshot.Grades {
		if !idx.IsValidGrade(grade) {
			continue
		}
		sum += grade.Points
		valid++
		if graded[grade.AssignmentID] == nil {
			graded[grade.AssignmentID] = map[string]struct{}{}
		}
		graded[grade.AssignmentID][grade.StudentUsername] = struct{}{}
	}
	if valid > 0 {
		metrics.AverageGrade = roundTo(sum/float64(valid), 1)
	}

	seenAssignments := map[string]struct{}{}
	for _, assignment := range snapshot.Assignments {
		if _, dup := seenAssignments[assignment.ID]; dup {
			continue
		}
		seenAssignments[assignment.ID] = struct{}{}
		if !assignment.DueDate.IsZero() && assignment.DueDate.Before(now) {
			metrics.OverdueAssignments++
		}
		for _, username := range idx.StudentsInClass(assignment.ClassID) {
			if _, ok := graded[assignment.ID][username]; !ok {
				metrics.PendingGrades++
			}
		}
	}

	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	activeFrom := now.AddDate(0, 0, -window)
	active := map[string]struct{}{}
	for _, record := range snapshot.Attendance {
		if record.Date.IsZero() {
			continue
		}
		if record.Status == models.AttendancePresent && !record.Date.Before(today) && record.Date.Before(tomorrow) {
			metrics.TodayAttendance++
		}
		if !record.Date.Before(activeFrom) && record.Date.Before(now) {
			active[record.StudentUsername] = struct{}{}
		}
	}
	metrics.ActiveStudents = len(active)
	return metrics
}

// ScopeToTeacher narrows a snapshot to the classes a teacher owns and the records tied to them.
// Orphaned grades of in-scope students are kept so the integrity audit still sees them.
func ScopeToTeacher(snapshot *models.Snapshot, teacher string) *models.Snapshot {
	if snapshot == nil {
		return nil
	}
	scoped := &models.Snapshot{
		Badges:    snapshot.Badges,
		Failures:  snapshot.Failures,
		FetchedAt: snapshot.FetchedAt,
	}
	classes := map[string]struct{}{}
	for _, class := range snapshot.Classes {
		if strings.EqualFold(class.TeacherUsername, teacher) {
			classes[class.ID] = struct{}{}
			scoped.Classes = append(scoped.Classes, class)
		}
	}
	students := map[string]struct{}{}
	for _, student := range snapshot.Students {
		if _, ok := classes[student.ClassID]; ok {
			students[student.Username] = struct{}{}
			scoped.Students = append(scoped.Students, student)
		}
	}
	assignments := map[string]struct{}{}
	known := map[string]struct{}{}
	for _, assignment := range snapshot.Assignments {
		known[assignment.ID] = struct{}{}
		if _, ok := classes[assignment.ClassID]; ok {
			assignments[assignment.ID] = struct{}{}
			scoped.Assignments = append(scoped.Assignments, assignment)
		}
	}
	for _, grade := range snapshot.Grades {
		_, inScope := assignments[grade.AssignmentID]
		_, exists := known[grade.AssignmentID]
		_, ownStudent := students[grade.StudentUsername]
		if inScope || (!exists && ownStudent) {
			scoped.Grades = append(scoped.Grades, grade)
		}
	}
	for _, record := range snapshot.Attendance {
		_, inClass := classes[record.ClassID]
		_, ownStudent := students[record.StudentUsername]
		if inClass || (record.ClassID == "" && ownStudent) {
			scoped.Attendance = append(scoped.Attendance, record)
		}
	}
	for _, record := range snapshot.Gamification {
		if _, ok := students[record.StudentUsername]; ok {
			scoped.Gamification = append(scoped.Gamification, record)
		}
	}
	return scoped
}
