package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
)

func newCollectionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSQLCollectionStoreFetchGrades(t *testing.T) {
	db, mock, cleanup := newCollectionMock(t)
	defer cleanup()
	store := NewSQLCollectionStore(db)

	gradedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "assignment_id", "student_username", "points", "graded_at"}).
		AddRow("g1", "a1", "ani", "87.50", gradedAt).
		AddRow("g2", "a2", "budi", nil, gradedAt)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM grades")).WillReturnRows(rows)

	result, err := store.Fetch(context.Background(), models.CollectionGrades, models.FetchParams{"classIds": "c1"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "a1", result.Rows[0]["assignment_id"])
	assert.Nil(t, result.Rows[1]["points"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCollectionStoreFetchAttendanceByClass(t *testing.T) {
	db, mock, cleanup := newCollectionMock(t)
	defer cleanup()
	store := NewSQLCollectionStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM attendance WHERE class_id = ANY($1) OR class_id IS NULL OR class_id = ''")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_username", "class_id", "status"}).AddRow("at1", "ani", "c1", "hadir"))

	result, err := store.Fetch(context.Background(), models.CollectionAttendance, models.FetchParams{"classIds": "c1, c2"})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCollectionStoreFetchQueryError(t *testing.T) {
	db, mock, cleanup := newCollectionMock(t)
	defer cleanup()
	store := NewSQLCollectionStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM badges")).WillReturnError(assert.AnError)

	_, err := store.Fetch(context.Background(), models.CollectionBadges, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSQLCollectionStoreRejectsUnknownCollection(t *testing.T) {
	db, _, cleanup := newCollectionMock(t)
	defer cleanup()
	store := NewSQLCollectionStore(db)

	_, err := store.Fetch(context.Background(), models.Collection("users"), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCollection.Code, appErrors.FromError(err).Code)
}
