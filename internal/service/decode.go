package service

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

func validUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch strings.ToLower(value) {
	case "", "undefined", "null", "nan":
		return false
	}
	return !strings.ContainsFunc(value, unicode.IsSpace)
}

// newRecordValidator registers the username rule used to drop malformed student rows.
// It panics if the rule cannot be registered, since every student row would otherwise be rejected.
func newRecordValidator() *validator.Validate {
	validate := validator.New()
	if err := validate.RegisterValidation("username", validUsername); err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}
	return validate
}

type recordDecoder struct {
	validate *validator.Validate
	loc      *time.Location
}

func (d recordDecoder) classes(rows []models.Row) []models.ClassRecord {
	out := make([]models.ClassRecord, 0, len(rows))
	for _, row := range rows {
		id := firstString(row, idFields...)
		if id == "" {
			continue
		}
		out = append(out, models.ClassRecord{
			ID:              id,
			Name:            firstString(row, "name", "className", "nama"),
			Subject:         firstString(row, "subject", "mapel"),
			Description:     firstString(row, "description"),
			TeacherUsername: firstString(row, "teacherUsername", "teacher_username", "teacher"),
			CreatedAt:       firstTimestamp(row, d.loc, "createdAt", "created_at"),
		})
	}
	return out
}

func (d recordDecoder) students(rows []models.Row) []models.StudentRecord {
	out := make([]models.StudentRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		student := models.StudentRecord{
			ID:       firstString(row, idFields...),
			Username: firstString(row, "username", "studentUsername"),
			FullName: firstString(row, "fullName", "full_name", "name", "nama"),
			ClassID:  firstString(row, classIDFields...),
			Role:     firstString(row, "role"),
			JoinedAt: firstTimestamp(row, d.loc, "joinedAt", "joined_at", "createdAt"),
		}
		if err := d.validate.Struct(student); err != nil {
			continue
		}
		if _, dup := seen[student.Username]; dup {
			continue
		}
		seen[student.Username] = struct{}{}
		out = append(out, student)
	}
	return out
}

func (d recordDecoder) assignments(rows []models.Row) []models.AssignmentRecord {
	out := make([]models.AssignmentRecord, 0, len(rows))
	for _, row := range rows {
		id := firstString(row, idFields...)
		if id == "" {
			continue
		}
		out = append(out, models.AssignmentRecord{
			ID:      id,
			Title:   firstString(row, "title", "judul", "name"),
			ClassID: firstString(row, classIDFields...),
			DueDate: firstTimestamp(row, d.loc, "dueDate", "due_date", "deadline"),
		})
	}
	return out
}

func (d recordDecoder) grades(rows []models.Row) []models.GradeRecord {
	out := make([]models.GradeRecord, 0, len(rows))
	for _, row := range rows {
		points, ok := firstNumber(row, gradePointFields...)
		if ok && points < 0 {
			points, ok = 0, false
		}
		out = append(out, models.GradeRecord{
			ID:              firstString(row, idFields...),
			StudentUsername: firstString(row, studentUsernameFields...),
			AssignmentID:    firstString(row, assignmentIDFields...),
			Points:          points,
			PointsValid:     ok,
			Feedback:        firstString(row, "feedback", "comment"),
			GradedAt:        firstTimestamp(row, d.loc, "gradedAt", "graded_at", "createdAt"),
		})
	}
	return out
}

func (d recordDecoder) attendance(rows []models.Row) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		username := firstString(row, studentUsernameFields...)
		if username == "" {
			continue
		}
		out = append(out, models.AttendanceRecord{
			ID:              firstString(row, idFields...),
			Date:            firstTimestamp(row, d.loc, "date", "tanggal"),
			ClassID:         firstString(row, classIDFields...),
			StudentUsername: username,
			Status:          normaliseStatus(firstString(row, "status")),
		})
	}
	return out
}

func (d recordDecoder) gamification(rows []models.Row) []models.GamificationRecord {
	out := make([]models.GamificationRecord, 0, len(rows))
	for _, row := range rows {
		points, hasPoints := firstNumber(row, gamificationPointFields...)
		level, hasLevel := firstNumber(row, levelFields...)
		record := models.GamificationRecord{
			StudentUsername: firstString(row, studentUsernameFields...),
			Points:          clampInt(points, 0),
			HasPoints:       hasPoints,
			Level:           1,
			Badges:          splitBadges(row["badges"]),
		}
		if hasLevel {
			record.Level = clampInt(level, 1)
		}
		out = append(out, record)
	}
	return out
}

func (d recordDecoder) badges(rows []models.Row) []models.BadgeDefinition {
	out := make([]models.BadgeDefinition, 0, len(rows))
	for _, row := range rows {
		name := firstString(row, "name", "badge")
		if name == "" {
			continue
		}
		points, _ := firstNumber(row, badgePointFields...)
		out = append(out, models.BadgeDefinition{
			Name:       name,
			Icon:       firstString(row, "icon", "emoji"),
			PointValue: clampInt(points, 0),
		})
	}
	return out
}

func clampInt(value float64, floor int) int {
	truncated := int(math.Floor(value))
	if truncated < floor {
		return floor
	}
	return truncated
}
