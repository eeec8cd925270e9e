package models

import "time"

// Collection names a remote collection (one spreadsheet tab).
type Collection string

const (
	CollectionClasses      Collection = "classes"
	CollectionStudents     Collection = "students"
	CollectionAssignments  Collection = "assignments"
	CollectionGrades       Collection = "grades"
	CollectionAttendance   Collection = "attendance"
	CollectionGamification Collection = "gamification"
	CollectionBadges       Collection = "badges"
)

// AllCollections lists every collection the engine consumes.
var AllCollections = []Collection{
	CollectionClasses,
	CollectionStudents,
	CollectionAssignments,
	CollectionGrades,
	CollectionAttendance,
	CollectionGamification,
	CollectionBadges,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

// Row is one untyped record as delivered by the store.
type Row map[string]interface{}

// FetchParams narrows a collection read. Keys are passed through to the store untouched.
type FetchParams map[string]string

// FetchResult mirrors the store reply `{success, <collection>: rows | error}`.
type FetchResult struct {
	Success bool
	Rows    []Row
	Error   string
}

// CollectionFailure records a collection that could not be loaded.
type CollectionFailure struct {
	Collection Collection `json:"collection"`
	Message    string     `json:"message"`
}

// Snapshot is an immutable view of every collection taken in one fetch cycle.
type Snapshot struct {
	Classes      []ClassRecord
	Students     []StudentRecord
	Assignments  []AssignmentRecord
	Grades       []GradeRecord
	Attendance   []AttendanceRecord
	Gamification []GamificationRecord
	Badges       []BadgeDefinition
	Failures     []CollectionFailure
	FetchedAt    time.Time
}

// Failed reports whether the named collection failed to load.
func (s *Snapshot) Failed(c Collection) bool {
	if s == nil {
		return false
	}
	for _, failure := range s.Failures {
		if failure.Collection == c {
			return true
		}
	}
	return false
}
