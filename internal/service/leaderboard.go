package service

import (
	"sort"

	"github.com/noah-isme/classroom-insight-api/internal/dto"
	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// BuildLeaderboard ranks every gamification entry that has a username and a points value.
// Order is points descending, then username ascending, so equal scores always rank the same way.
// Duplicate rows for a username collapse to the highest-scoring one.
func BuildLeaderboard(records []models.GamificationRecord, idx *ReferenceIndex) []dto.LeaderboardEntry {
	best := make(map[string]models.GamificationRecord, len(records))
	for _, record := range records {
		if record.StudentUsername == "" || !record.HasPoints {
			continue
		}
		if current, seen := best[record.StudentUsername]; !seen || outranks(record, current) {
			best[record.StudentUsername] = record
		}
	}

	entries := make([]dto.LeaderboardEntry, 0, len(best))
	for username, record := range best {
		className := UnknownClassLabel
		if student, ok := idx.Student(username); ok {
			className = idx.ClassName(student.ClassID)
		}
		entries = append(entries, dto.LeaderboardEntry{
			Username:   username,
			FullName:   idx.StudentName(username),
			ClassName:  className,
			Points:     record.Points,
			Level:      record.Level,
			BadgeCount: len(record.Badges),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// TopLeaderboard truncates a ranked leaderboard to at most limit entries.
func TopLeaderboard(entries []dto.LeaderboardEntry, limit int) []dto.LeaderboardEntry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}

func outranks(a, b models.GamificationRecord) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Level > b.Level
}

// gamificationFor picks the student's gamification row using the same rule as the leaderboard.
func gamificationFor(records []models.GamificationRecord, username string) (models.GamificationRecord, bool) {
	var picked models.GamificationRecord
	found := false
	for _, record := range records {
		if record.StudentUsername != username {
			continue
		}
		if !found || (record.HasPoints && !picked.HasPoints) || (record.HasPoints == picked.HasPoints && outranks(record, picked)) {
			picked = record
			found = true
		}
	}
	return picked, found
}
