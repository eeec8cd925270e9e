package service

import (
	"time"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// AuditGrades reports grades whose assignment id does not resolve. It returns nil when every
// grade is linked; the source data is never modified. Grades without an id are counted but not
// listed.
func AuditGrades(grades []models.GradeRecord, idx *ReferenceIndex, now time.Time) *dto.IntegrityReport {
	count := 0
	ids := []string{}
	for _, grade := range grades {
		if !idx.IsOrphaned(grade) {
			continue
		}
		count++
		if grade.ID != "" {
			ids = append(ids, grade.ID)
		}
	}
	if count == 0 {
		return nil
	}
	return &dto.IntegrityReport{
		OrphanedCount:    count,
		OrphanedGradeIDs: ids,
		DetectedAt:       now,
	}
}
