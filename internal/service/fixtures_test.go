package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

var jakarta = mustLocation("Asia/Jakarta")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, jakarta)
}

func grade(id, username, assignmentID string, points float64, gradedAt time.Time) models.GradeRecord {
	return models.GradeRecord{ID: id, StudentUsername: username, AssignmentID: assignmentID, Points: points, PointsValid: true, GradedAt: gradedAt}
}

func gamified(username string, points, level int, badges ...string) models.GamificationRecord {
	return models.GamificationRecord{StudentUsername: username, Points: points, HasPoints: true, Level: level, Badges: badges}
}

// classroomSnapshot is two teachers, three students and one grade pointing at a deleted assignment.
func classroomSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Classes: []models.ClassRecord{
			{ID: "c1", Name: "X IPA 1", TeacherUsername: "bu.sari"},
			{ID: "c2", Name: "X IPS 2", TeacherUsername: "pak.budi"},
		},
		Students: []models.StudentRecord{
			{Username: "ani", FullName: "Ani Lestari", ClassID: "c1"},
			{Username: "bayu", FullName: "Bayu Pratama", ClassID: "c1"},
			{Username: "citra", FullName: "Citra Dewi", ClassID: "c2"},
		},
		Assignments: []models.AssignmentRecord{
			{ID: "a1", Title: "Laporan Praktikum", ClassID: "c1", DueDate: at(2024, 5, 10, 23, 59)},
			{ID: "a2", Title: "Esai Sejarah", ClassID: "c2", DueDate: at(2024, 5, 20, 23, 59)},
		},
		Grades: []models.GradeRecord{
			grade("g1", "ani", "a1", 90, at(2024, 5, 11, 8, 0)),
			grade("g2", "citra", "a2", 70, at(2024, 5, 12, 9, 0)),
			grade("g3", "bayu", "deleted", 50, at(2024, 5, 12, 10, 0)),
		},
		Attendance: []models.AttendanceRecord{
			{ID: "at1", Date: at(2024, 5, 15, 7, 0), ClassID: "c1", StudentUsername: "ani", Status: models.AttendancePresent},
			{ID: "at2", Date: at(2024, 5, 15, 7, 5), ClassID: "c1", StudentUsername: "bayu", Status: models.AttendanceSick},
			{ID: "at3", Date: at(2024, 5, 14, 7, 0), ClassID: "c2", StudentUsername: "citra", Status: models.AttendancePresent},
		},
		Gamification: []models.GamificationRecord{
			gamified("ani", 120, 3, "Rajin", "Juara"),
			gamified("bayu", 80, 2),
			gamified("citra", 120, 4, "Rajin"),
		},
		Badges: []models.BadgeDefinition{
			{Name: "Rajin", Icon: "⭐", PointValue: 10},
		},
	}
}

type storeCall struct {
	collection models.Collection
	params     models.FetchParams
	settled    map[models.Collection]bool
}

// fakeStore serves canned results and records the collections already settled at each call.
type fakeStore struct {
	mu      sync.Mutex
	results map[models.Collection]*models.FetchResult
	errs    map[models.Collection]error
	block   chan struct{}
	settled map[models.Collection]bool
	calls   []storeCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results: map[models.Collection]*models.FetchResult{},
		errs:    map[models.Collection]error{},
		settled: map[models.Collection]bool{},
	}
}

func (f *fakeStore) set(collection models.Collection, rows ...models.Row) {
	f.results[collection] = &models.FetchResult{Success: true, Rows: rows}
}

func (f *fakeStore) Fetch(ctx context.Context, collection models.Collection, params models.FetchParams) (*models.FetchResult, error) {
	f.mu.Lock()
	seen := make(map[models.Collection]bool, len(f.settled))
	for c := range f.settled {
		seen[c] = true
	}
	f.calls = append(f.calls, storeCall{collection: collection, params: params, settled: seen})
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled[collection] = true
	if err := f.errs[collection]; err != nil {
		return nil, err
	}
	if result, ok := f.results[collection]; ok {
		return result, nil
	}
	return &models.FetchResult{Success: true, Rows: []models.Row{}}, nil
}

func (f *fakeStore) call(collection models.Collection) (storeCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if call.collection == collection {
			return call, true
		}
	}
	return storeCall{}, false
}
