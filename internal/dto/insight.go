package dto

import "time"

// Warning kinds surfaced alongside partial results.
const (
	WarningTransport = "transport"
	WarningIntegrity = "integrity"
)

// Warning is a non-fatal condition the presentation layer should show as a banner.
type Warning struct {
	Kind       string `json:"kind"`
	Collection string `json:"collection,omitempty"`
	Message    string `json:"message"`
}

// IntegrityReport lists grades whose assignment no longer exists.
type IntegrityReport struct {
	OrphanedCount    int       `json:"orphanedCount"`
	OrphanedGradeIDs []string  `json:"orphanedGradeIds"`
	DetectedAt       time.Time `json:"detectedAt"`
}

// BadgeSummary is an earned badge enriched with its definition when known.
type BadgeSummary struct {
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
	PointValue int    `json:"pointValue"`
}

// StudentProgress is the per-student aggregate view.
type StudentProgress struct {
	Username             string         `json:"username"`
	FullName             string         `json:"fullName"`
	ClassID              string         `json:"classId"`
	ClassName            string         `json:"className"`
	AttendanceRate       int            `json:"attendanceRate"`
	AverageGrade         float64        `json:"averageGrade"`
	CompletedAssignments int            `json:"completedAssignments"`
	Points               int            `json:"points"`
	Level                int            `json:"level"`
	Badges               []BadgeSummary `json:"badges"`
	Rank                 int            `json:"rank"`
}

// TeacherMetrics carries dashboard KPIs for a teacher's scope.
type TeacherMetrics struct {
	TotalClasses       int     `json:"totalClasses"`
	TotalStudents      int     `json:"totalStudents"`
	TotalAssignments   int     `json:"totalAssignments"`
	AverageGrade       float64 `json:"averageGrade"`
	TodayAttendance    int     `json:"todayAttendance"`
	OverdueAssignments int     `json:"overdueAssignments"`
	PendingGrades      int     `json:"pendingGrades"`
	ActiveStudents     int     `json:"activeStudents"`
}

// LeaderboardEntry is one ranked student.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	ClassName  string `json:"className"`
	Points     int    `json:"points"`
	Level      int    `json:"level"`
	BadgeCount int    `json:"badgeCount"`
}

// Activity item types.
const (
	ActivityAssignment = "assignment"
	ActivityGrade      = "grade"
	ActivityAttendance = "attendance"
)

// ActivityItem is one entry of the merged activity feed.
type ActivityItem struct {
	Type            string    `json:"type"`
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StudentUsername string    `json:"studentUsername,omitempty"`
	ClassName       string    `json:"className,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// TeacherDashboardResponse is the complete teacher dashboard payload.
type TeacherDashboardResponse struct {
	Teacher     string             `json:"teacher"`
	Metrics     TeacherMetrics     `json:"metrics"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Activity    []ActivityItem     `json:"activity"`
	Integrity   *IntegrityReport   `json:"integrity"`
	Warnings    []Warning          `json:"warnings"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// StudentDashboardResponse is the caller's own progress payload.
type StudentDashboardResponse struct {
	Progress    StudentProgress `json:"progress"`
	Warnings    []Warning       `json:"warnings"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// LeaderboardResponse wraps a truncated leaderboard.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	Total       int                `json:"total"`
	Warnings    []Warning          `json:"warnings"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// ActivityResponse wraps the merged activity feed.
type ActivityResponse struct {
	Items       []ActivityItem `json:"items"`
	Warnings    []Warning      `json:"warnings"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// IntegrityResponse carries the audit result; Report is null when the data is consistent.
type IntegrityResponse struct {
	Report      *IntegrityReport `json:"report"`
	Warnings    []Warning        `json:"warnings"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
