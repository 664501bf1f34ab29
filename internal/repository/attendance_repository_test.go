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

func TestReplaceSessionSwapsFlagsAtomically(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sess-1"))
	mock.ExpectExec("DELETE FROM attendance_flags").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO attendance_flags").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance_flags").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	session := &models.AttendanceSession{
		ClassID:     "t1",
		SubjectID:   "s1",
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		LessonCount: 2,
		RecordedBy:  "u1",
	}
	flags := []models.AttendanceFlag{
		{EnrollmentID: "e1", Present: true},
		{EnrollmentID: "e2", Present: false},
	}
	err := repo.ReplaceSession(context.Background(), session, flags)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "sess-1", flags[0].SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSessionRollsBackWhenFlagInsertFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sess-1"))
	mock.ExpectExec("DELETE FROM attendance_flags").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO attendance_flags").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	session := &models.AttendanceSession{ClassID: "t1", SubjectID: "s1", Date: time.Now(), LessonCount: 1}
	err := repo.ReplaceSession(context.Background(), session, []models.AttendanceFlag{{EnrollmentID: "e1", Present: true}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_name", "total_lessons", "presences"}).
		AddRow("e1", "Ana Souza", 40, 36).
		AddRow("e2", "Bruno Lima", 40, 20)
	mock.ExpectQuery("SELECT e.id AS enrollment_id").WillReturnRows(rows)

	totals, err := repo.ClassTotals(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 36, totals[0].Presences)
	assert.NoError(t, mock.ExpectationsWereMet())
}
