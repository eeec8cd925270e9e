package service

import (
	"sort"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// Labels used when a class reference cannot be shown by name.
const (
	UnknownClassLabel    = "Unknown Class"
	UnassignedClassLabel = "Belum ada kelas"
)

// ReferenceIndex holds lookup tables over one snapshot. It is read-only once built.
type ReferenceIndex struct {
	classes         map[string]models.ClassRecord
	students        map[string]models.StudentRecord
	assignments     map[string]models.AssignmentRecord
	studentsByClass map[string][]string
}

// NewReferenceIndex indexes classes and assignments by id and students by username and class.
func NewReferenceIndex(snapshot *models.Snapshot) *ReferenceIndex {
	idx := &ReferenceIndex{
		classes:         map[string]models.ClassRecord{},
		students:        map[string]models.StudentRecord{},
		assignments:     map[string]models.AssignmentRecord{},
		studentsByClass: map[string][]string{},
	}
	if snapshot == nil {
		return idx
	}
	for _, class := range snapshot.Classes {
		idx.classes[class.ID] = class
	}
	for _, assignment := range snapshot.Assignments {
		idx.assignments[assignment.ID] = assignment
	}
	for _, student := range snapshot.Students {
		if _, dup := idx.students[student.Username]; dup {
			continue
		}
		idx.students[student.Username] = student
		if student.ClassID != "" {
			idx.studentsByClass[student.ClassID] = append(idx.studentsByClass[student.ClassID], student.Username)
		}
	}
	for classID := range idx.studentsByClass {
		sort.Strings(idx.studentsByClass[classID])
	}
	return idx
}

// ClassName resolves a class id to its display name.
func (idx *ReferenceIndex) ClassName(classID string) string {
	if classID == "" {
		return UnassignedClassLabel
	}
	class, ok := idx.classes[classID]
	if !ok {
		return UnknownClassLabel
	}
	if class.Name == "" {
		return UnknownClassLabel
	}
	return class.Name
}

// Class returns the class with the given id.
func (idx *ReferenceIndex) Class(classID string) (models.ClassRecord, bool) {
	class, ok := idx.classes[classID]
	return class, ok
}

// Assignment returns the assignment with the given id.
func (idx *ReferenceIndex) Assignment(assignmentID string) (models.AssignmentRecord, bool) {
	assignment, ok := idx.assignments[assignmentID]
	return assignment, ok
}

// Student returns the student with the given username.
func (idx *ReferenceIndex) Student(username string) (models.StudentRecord, bool) {
	student, ok := idx.students[username]
	return student, ok
}

// StudentName returns the student's full name, or the username when unknown.
func (idx *ReferenceIndex) StudentName(username string) string {
	if student, ok := idx.students[username]; ok {
		return student.DisplayName()
	}
	return username
}

// StudentsInClass lists usernames enrolled in a class, sorted. Empty class ids have no members.
func (idx *ReferenceIndex) StudentsInClass(classID string) []string {
	if classID == "" {
		return nil
	}
	return idx.studentsByClass[classID]
}

// IsOrphaned reports whether the grade references an assignment that does not exist.
func (idx *ReferenceIndex) IsOrphaned(grade models.GradeRecord) bool {
	_, ok := idx.assignments[grade.AssignmentID]
	return !ok
}

// IsValidGrade reports whether a grade counts toward averages and completion.
func (idx *ReferenceIndex) IsValidGrade(grade models.GradeRecord) bool {
	return grade.PointsValid && grade.Points >= 0 && !idx.IsOrphaned(grade)
}
