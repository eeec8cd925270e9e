package service

import (
	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// BuildStudentProgress aggregates one student's attendance, grades and gamification state.
// leaderboard must be the full ranked leaderboard; students absent from it rank last.
func BuildStudentProgress(username string, snapshot *models.Snapshot, idx *ReferenceIndex, leaderboard []dto.LeaderboardEntry) dto.StudentProgress {
	progress := dto.StudentProgress{
		Username:  username,
		FullName:  idx.StudentName(username),
		ClassName: UnassignedClassLabel,
		Level:     1,
		Badges:    []dto.BadgeSummary{},
	}
	if student, ok := idx.Student(username); ok {
		progress.ClassID = student.ClassID
		progress.ClassName = idx.ClassName(student.ClassID)
	}
	if snapshot == nil {
		progress.Rank = len(leaderboard) + 1
		return progress
	}

	var present, total int
	for _, record := range snapshot.Attendance {
		if record.StudentUsername != username {
			continue
		}
		total++
		if record.Status == models.AttendancePresent {
			present++
		}
	}
	if total > 0 {
		progress.AttendanceRate = int(roundTo(float64(present)/float64(total)*100, 0))
	}

	var sum float64
	var validCount, gradeRows int
	distinct := map[string]struct{}{}
	for _, grade := range snapshot.Grades {
		if grade.StudentUsername != username || !idx.IsValidGrade(grade) {
			continue
		}
		gradeRows++
		distinct[grade.AssignmentID] = struct{}{}
		sum += grade.Points
		validCount++
	}
	if validCount > 0 {
		progress.AverageGrade = roundTo(sum/float64(validCount), 2)
	}
	// Only valid grades count. Valid rows outnumber distinct assignments when an assignment was
	// regraded, so regrades are over-counted.
	progress.CompletedAssignments = len(distinct)
	if gradeRows > progress.CompletedAssignments {
		progress.CompletedAssignments = gradeRows
	}

	definitions := make(map[string]models.BadgeDefinition, len(snapshot.Badges))
	for _, badge := range snapshot.Badges {
		definitions[badge.Name] = badge
	}
	if record, ok := gamificationFor(snapshot.Gamification, username); ok {
		progress.Points = record.Points
		progress.Level = record.Level
		for _, name := range record.Badges {
			summary := dto.BadgeSummary{Name: name}
			if def, ok := definitions[name]; ok {
				summary.Icon = def.Icon
				summary.PointValue = def.PointValue
			}
			progress.Badges = append(progress.Badges, summary)
		}
	}

	progress.Rank = len(leaderboard) + 1
	for _, entry := range leaderboard {
		if entry.Username == username {
			progress.Rank = entry.Rank
			break
		}
	}
	return progress
}
