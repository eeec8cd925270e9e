package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

func scenarioA() *models.Snapshot {
	return &models.Snapshot{
		Classes:     []models.ClassRecord{{ID: "c1"}},
		Students:    []models.StudentRecord{{Username: "s1", ClassID: "c1"}},
		Assignments: []models.AssignmentRecord{{ID: "a1", ClassID: "c1", DueDate: at(2024, 1, 1, 0, 0)}},
	}
}

func TestTeacherMetricsPendingWhenUngraded(t *testing.T) {
	snapshot := scenarioA()
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 1, metrics.PendingGrades)
	assert.Equal(t, 1, metrics.OverdueAssignments)
	assert.Equal(t, 0.0, metrics.AverageGrade)
	assert.Equal(t, 1, metrics.TotalClasses)
	assert.Equal(t, 1, metrics.TotalStudents)
	assert.Equal(t, 1, metrics.TotalAssignments)
}

func TestTeacherMetricsDuplicateAssignmentRowsCountOnce(t *testing.T) {
	snapshot := scenarioA()
	snapshot.Assignments = append(snapshot.Assignments, snapshot.Assignments[0])
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 1, metrics.OverdueAssignments)
	assert.Equal(t, 1, metrics.PendingGrades)
}

func TestTeacherMetricsGradedClearsPending(t *testing.T) {
	snapshot := scenarioA()
	snapshot.Grades = []models.GradeRecord{grade("g1", "s1", "a1", 80, at(2024, 1, 2, 8, 0))}
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 0, metrics.PendingGrades)
	assert.Equal(t, 80.0, metrics.AverageGrade)
}

func TestTeacherMetricsIgnoresOrphanedGrades(t *testing.T) {
	snapshot := &models.Snapshot{Grades: []models.GradeRecord{grade("g1", "s1", "deleted-id", 50, at(2024, 1, 2, 8, 0))}}
	idx := NewReferenceIndex(snapshot)
	metrics := BuildTeacherMetrics(snapshot, idx, at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 0.0, metrics.AverageGrade)
	report := AuditGrades(snapshot.Grades, idx, at(2024, 5, 15, 12, 0))
	require.NotNil(t, report)
	assert.Equal(t, 1, report.OrphanedCount)
}

func TestTeacherMetricsInvalidPointsStayPending(t *testing.T) {
	snapshot := scenarioA()
	snapshot.Grades = []models.GradeRecord{{ID: "g1", StudentUsername: "s1", AssignmentID: "a1"}}
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 1, metrics.PendingGrades)
	assert.Equal(t, 0.0, metrics.AverageGrade)
}

func TestTeacherMetricsAttendanceWindows(t *testing.T) {
	snapshot := classroomSnapshot()
	snapshot.Attendance = append(snapshot.Attendance,
		models.AttendanceRecord{ID: "old", Date: at(2024, 5, 1, 7, 0), StudentUsername: "bayu", Status: models.AttendancePresent},
		models.AttendanceRecord{ID: "future", Date: at(2024, 5, 16, 7, 0), StudentUsername: "bayu", Status: models.AttendancePresent},
	)
	now := at(2024, 5, 15, 12, 0)
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), now, TeacherMetricsOptions{Location: jakarta, ActiveWindowDays: 7})

	assert.Equal(t, 1, metrics.TodayAttendance)
	assert.Equal(t, 3, metrics.ActiveStudents)
	assert.Equal(t, 1, metrics.OverdueAssignments)
	assert.Equal(t, 80.0, metrics.AverageGrade)
	// a1: bayu ungraded; a2: citra graded.
	assert.Equal(t, 1, metrics.PendingGrades)
}

func TestTeacherMetricsOrderIndependent(t *testing.T) {
	base := classroomSnapshot()
	now := at(2024, 5, 15, 12, 0)
	opts := TeacherMetricsOptions{Location: jakarta}
	want := BuildTeacherMetrics(base, NewReferenceIndex(base), now, opts)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := classroomSnapshot()
		rng.Shuffle(len(shuffled.Students), func(a, b int) { shuffled.Students[a], shuffled.Students[b] = shuffled.Students[b], shuffled.Students[a] })
		rng.Shuffle(len(shuffled.Assignments), func(a, b int) {
			shuffled.Assignments[a], shuffled.Assignments[b] = shuffled.Assignments[b], shuffled.Assignments[a]
		})
		rng.Shuffle(len(shuffled.Grades), func(a, b int) { shuffled.Grades[a], shuffled.Grades[b] = shuffled.Grades[b], shuffled.Grades[a] })
		rng.Shuffle(len(shuffled.Attendance), func(a, b int) {
			shuffled.Attendance[a], shuffled.Attendance[b] = shuffled.Attendance[b], shuffled.Attendance[a]
		})
		assert.Equal(t, want, BuildTeacherMetrics(shuffled, NewReferenceIndex(shuffled), now, opts))
	}
}

func TestTeacherMetricsDuplicateAssignmentsCountOnce(t *testing.T) {
	snapshot := scenarioA()
	snapshot.Assignments = append(snapshot.Assignments, snapshot.Assignments[0])
	metrics := BuildTeacherMetrics(snapshot, NewReferenceIndex(snapshot), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{Location: jakarta})

	assert.Equal(t, 1, metrics.PendingGrades)
}

func TestTeacherMetricsEmptySnapshot(t *testing.T) {
	metrics := BuildTeacherMetrics(&models.Snapshot{}, NewReferenceIndex(nil), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{})
	assert.Zero(t, metrics)
	assert.Zero(t, BuildTeacherMetrics(nil, NewReferenceIndex(nil), at(2024, 5, 15, 12, 0), TeacherMetricsOptions{}))
}

func TestScopeToTeacher(t *testing.T) {
	snapshot := classroomSnapshot()
	snapshot.Attendance = append(snapshot.Attendance,
		models.AttendanceRecord{ID: "nc", Date: at(2024, 5, 15, 7, 0), StudentUsername: "bayu", Status: models.AttendancePresent},
		models.AttendanceRecord{ID: "nc2", Date: at(2024, 5, 15, 7, 0), StudentUsername: "citra", Status: models.AttendancePresent},
	)
	snapshot.Failures = []models.CollectionFailure{{Collection: models.CollectionBadges, Message: "failed to load badges: x"}}

	scoped := ScopeToTeacher(snapshot, "BU.SARI")

	require.Len(t, scoped.Classes, 1)
	assert.Equal(t, "c1", scoped.Classes[0].ID)
	assert.Len(t, scoped.Students, 2)
	assert.Len(t, scoped.Assignments, 1)
	gradeIDs := []string{}
	for _, g := range scoped.Grades {
		gradeIDs = append(gradeIDs, g.ID)
	}
	assert.ElementsMatch(t, []string{"g1", "g3"}, gradeIDs)
	attendanceIDs := []string{}
	for _, a := range scoped.Attendance {
		attendanceIDs = append(attendanceIDs, a.ID)
	}
	assert.ElementsMatch(t, []string{"at1", "at2", "nc"}, attendanceIDs)
	assert.Len(t, scoped.Gamification, 2)
	assert.Equal(t, snapshot.Badges, scoped.Badges)
	assert.Equal(t, snapshot.Failures, scoped.Failures)
	assert.Nil(t, ScopeToTeacher(nil, "bu.sari"))
}
