package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sge-escolar/escola-api/internal/models"
)

func TestBulkUpsertWritesWholeBatchInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO grade_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO grade_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.GradeEntry{
		{EnrollmentID: "e1", SubjectID: "s1", PeriodID: "p1", Value: 8},
		{EnrollmentID: "e2", SubjectID: "s1", PeriodID: "p1", Value: 6.5},
	}
	err := repo.BulkUpsert(context.Background(), entries)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO grade_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO grade_entries").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	entries := []models.GradeEntry{
		{EnrollmentID: "e1", SubjectID: "s1", PeriodID: "p1", Value: 8},
		{EnrollmentID: "e2", SubjectID: "s1", PeriodID: "p1", Value: 6.5},
	}
	err := repo.BulkUpsert(context.Background(), entries)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySubject(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "subject_id", "period_id", "value", "recorded_by", "created_at", "updated_at"}).
		AddRow("g1", "e1", "s1", "p1", 8.0, "u1", now, now).
		AddRow("g2", "e1", "s1", "p2", 6.0, "u1", now, now)
	mock.ExpectQuery("SELECT .* FROM grade_entries WHERE enrollment_id = .* AND subject_id = .*").
		WillReturnRows(rows)

	entries, err := repo.ListBySubject(context.Background(), "e1", "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
