package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
)

var collectionTables = map[models.Collection]string{
	models.CollectionClasses:      "classes",
	models.CollectionStudents:     "students",
	models.CollectionAssignments:  "assignments",
	models.CollectionGrades:       "grades",
	models.CollectionAttendance:   "attendance",
	models.CollectionGamification: "gamification",
	models.CollectionBadges:       "badges",
}

// SQLCollectionStore reads collections from a Postgres mirror of the spreadsheet, one table per
// tab with snake_case columns.
type SQLCollectionStore struct {
	db *sqlx.DB
}

// NewSQLCollectionStore constructs a SQLCollectionStore.
func NewSQLCollectionStore(db *sqlx.DB) *SQLCollectionStore {
	return &SQLCollectionStore{db: db}
}

// Fetch selects every row of the collection's table. Attendance honours the classIds param,
// keeping rows without a class so unassigned students are not lost.
func (s *SQLCollectionStore) Fetch(ctx context.Context, collection models.Collection, params models.FetchParams) (*models.FetchResult, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCollection, fmt.Sprintf("unknown collection %q", collection))
	}
	query := fmt.Sprintf("SELECT * FROM %s", table)
	var args []interface{}
	if collection == models.CollectionAttendance {
		if ids := splitParam(params["classIds"]); len(ids) > 0 {
			query += " WHERE class_id = ANY($1) OR class_id IS NULL OR class_id = ''"
			args = append(args, pq.Array(ids))
		}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	out := []models.Row{}
	for rows.Next() {
		record := map[string]interface{}{}
		if err := rows.MapScan(record); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, models.Row(record))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return &models.FetchResult{Success: true, Rows: out}, nil
}

func splitParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
