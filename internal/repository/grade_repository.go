package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sge-escolar/escola-api/internal/models"
)

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade entries matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	query := `SELECT id, enrollment_id, subject_id, period_id, value, recorded_by, created_at, updated_at
        FROM grade_entries WHERE 1=1`
	var args []interface{}
	if filter.EnrollmentID != "" {
		query += fmt.Sprintf(" AND enrollment_id = $%d", len(args)+1)
		args = append(args, filter.EnrollmentID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.PeriodID != "" {
		query += fmt.Sprintf(" AND period_id = $%d", len(args)+1)
		args = append(args, filter.PeriodID)
	}
	query += " ORDER BY updated_at DESC"
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list grade entries: %w", err)
	}
	return entries, nil
}

// BulkUpsert writes a whole grade launch in one transaction. Conflicting
// (enrollment, subject, period) triples are overwritten so the last
// committed launch wins.
func (r *GradeRepository) BulkUpsert(ctx context.Context, entries []models.GradeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO grade_entries (id, enrollment_id, subject_id, period_id, value, recorded_by, created_at, updated_at)
        VALUES (:id, :enrollment_id, :subject_id, :period_id, :value, :recorded_by, :created_at, :updated_at)
        ON CONFLICT (enrollment_id, subject_id, period_id)
        DO UPDATE SET value = EXCLUDED.value, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert grade entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade entries: %w", err)
	}
	return nil
}

// ListBySubject returns all recorded entries for an enrollment + subject.
func (r *GradeRepository) ListBySubject(ctx context.Context, enrollmentID, subjectID string) ([]models.GradeEntry, error) {
	const query = `SELECT id, enrollment_id, subject_id, period_id, value, recorded_by, created_at, updated_at
        FROM grade_entries WHERE enrollment_id = $1 AND subject_id = $2 ORDER BY period_id`
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, enrollmentID, subjectID); err != nil {
		return nil, fmt.Errorf("list subject grades: %w", err)
	}
	return entries, nil
}

// FetchByEnrollment returns all entries for an enrollment keyed by subject.
func (r *GradeRepository) FetchByEnrollment(ctx context.Context, enrollmentID string) (map[string][]models.GradeEntry, error) {
	const query = `SELECT id, enrollment_id, subject_id, period_id, value, recorded_by, created_at, updated_at
        FROM grade_entries WHERE enrollment_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch grade entries: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.GradeEntry)
	for rows.Next() {
		var entry models.GradeEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("scan grade entry: %w", err)
		}
		result[entry.SubjectID] = append(result[entry.SubjectID], entry)
	}
	return result, nil
}

