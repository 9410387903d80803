package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-admin-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSessionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &models.Session{
		StartsAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		FacultyID: "fac-1",
		CourseID:  "course-1",
		SectionID: "sec-1",
		BatchID:   "batch-1",
		Topic:     "Databases",
	}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.False(t, session.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("SELECT .+ FROM sessions WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM sessions WHERE 1=1 AND batch_id").
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM sessions WHERE 1=1 AND batch_id .+ ORDER BY starts_at ASC LIMIT").
		WithArgs("batch-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "starts_at", "faculty_id", "course_id", "section_id", "batch_id", "topic", "venue", "created_at", "updated_at"}).
			AddRow("sess-1", now, "fac-1", "course-1", "sec-1", "batch-1", "Databases", "Hall A", now, now))

	sessions, pagination, err := repo.List(context.Background(), models.SessionFilter{BatchID: "batch-1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, 1, pagination.TotalCount)
	require.Equal(t, 20, pagination.PageSize)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("DELETE FROM sessions WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
