package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sge-escolar/escola-api/internal/models"
)

// AttendanceRepository persists attendance sessions and presence flags.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ReplaceSession creates or replaces the session keyed by
// (class, subject, date) and swaps every presence flag in one
// transaction. The stored state depends only on the last submission.
func (r *AttendanceRepository) ReplaceSession(ctx context.Context, session *models.AttendanceSession, flags []models.AttendanceFlag) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const upsertSession = `INSERT INTO attendance_sessions (id, class_id, subject_id, date, lesson_count, recorded_by, created_at, updated_at)
        VALUES (:id, :class_id, :subject_id, :date, :lesson_count, :recorded_by, :created_at, :updated_at)
        ON CONFLICT (class_id, subject_id, date)
        DO UPDATE SET lesson_count = EXCLUDED.lesson_count, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
        RETURNING id`
	rows, err := tx.NamedQuery(upsertSession, session)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert attendance session: %w", err)
	}
	if rows.Next() {
		if err := rows.Scan(&session.ID); err != nil {
			rows.Close()
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("scan session id: %w", err)
		}
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_flags WHERE session_id = $1`, session.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear attendance flags: %w", err)
	}

	const insertFlag = `INSERT INTO attendance_flags (id, session_id, enrollment_id, present)
        VALUES (:id, :session_id, :enrollment_id, :present)`
	for i := range flags {
		flags[i].ID = uuid.NewString()
		flags[i].SessionID = session.ID
		if _, err := tx.NamedExecContext(ctx, insertFlag, flags[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert attendance flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance session: %w", err)
	}
	return nil
}

// ClassTotals aggregates lesson-hours and presences per student of a class.
// A flag marked present counts the whole lesson_count of its session.
func (r *AttendanceRepository) ClassTotals(ctx context.Context, classID string) ([]models.AttendanceTotals, error) {
	const query = `SELECT e.id AS enrollment_id, st.full_name AS student_name,
        COALESCE(SUM(s.lesson_count), 0) AS total_lessons,
        COALESCE(SUM(CASE WHEN f.present THEN s.lesson_count ELSE 0 END), 0) AS presences
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        LEFT JOIN attendance_flags f ON f.enrollment_id = e.id
        LEFT JOIN attendance_sessions s ON s.id = f.session_id
        WHERE e.class_id = $1 AND e.status = $2
        GROUP BY e.id, st.full_name
        ORDER BY st.full_name`
	var totals []models.AttendanceTotals
	if err := r.db.SelectContext(ctx, &totals, query, classID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("class attendance totals: %w", err)
	}
	return totals, nil
}

// SubjectTotals aggregates lesson-hours and presences per subject for one
// enrollment, feeding the report card.
func (r *AttendanceRepository) SubjectTotals(ctx context.Context, enrollmentID string) ([]models.SubjectAttendancePct, error) {
	const query = `SELECT s.subject_id,
        COALESCE(SUM(s.lesson_count), 0) AS total_lessons,
        COALESCE(SUM(CASE WHEN f.present THEN s.lesson_count ELSE 0 END), 0) AS presences
        FROM attendance_flags f
        JOIN attendance_sessions s ON s.id = f.session_id
        WHERE f.enrollment_id = $1
        GROUP BY s.subject_id`
	var totals []models.SubjectAttendancePct
	if err := r.db.SelectContext(ctx, &totals, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("subject attendance totals: %w", err)
	}
	return totals, nil
}
