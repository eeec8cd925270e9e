package models

import "time"

// ClassRecord is a class owned by a teacher.
type ClassRecord struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Subject         string    `json:"subject" db:"subject"`
	Description     string    `json:"description" db:"description"`
	TeacherUsername string    `json:"teacherUsername" db:"teacher_username"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// StudentRecord is a student account. An empty ClassID means the student has no class yet.
type StudentRecord struct {
	ID       string    `json:"id"`
	Username string    `json:"username" validate:"required,max=128,username"`
	FullName string    `json:"fullName"`
	ClassID  string    `json:"classId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// DisplayName falls back to the username so labels are never blank.
func (s StudentRecord) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}

// AssignmentRecord belongs to a class; the class may no longer exist.
type AssignmentRecord struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	ClassID string    `json:"classId"`
	DueDate time.Time `json:"dueDate"`
}

// GradeRecord links a student to an assignment. AssignmentID may point to a deleted assignment.
type GradeRecord struct {
	ID              string    `json:"id"`
	StudentUsername string    `json:"studentUsername"`
	AssignmentID    string    `json:"assignmentId"`
	Points          float64   `json:"points"`
	PointsValid     bool      `json:"-"`
	Feedback        string    `json:"feedback"`
	GradedAt        time.Time `json:"gradedAt"`
}

// AttendanceStatus is the normalised attendance state.
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
	AttendanceSick       AttendanceStatus = "sick"
	AttendancePermission AttendanceStatus = "permission"
	AttendanceUnknown    AttendanceStatus = "unknown"
)

// AttendanceRecord is a single daily attendance entry.
type AttendanceRecord struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	ClassID         string           `json:"classId"`
	StudentUsername string           `json:"studentUsername"`
	Status          AttendanceStatus `json:"status"`
}

// GamificationRecord carries a student's points, level and earned badges.
// HasPoints is false when the source row had no usable points value.
type GamificationRecord struct {
	StudentUsername string   `json:"studentUsername"`
	Points          int      `json:"points"`
	HasPoints       bool     `json:"-"`
	Level           int      `json:"level"`
	Badges          []string `json:"badges"`
}

// BadgeDefinition describes a badge by name.
type BadgeDefinition struct {
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	PointValue int    `json:"pointValue"`
}
