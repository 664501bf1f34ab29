package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TeachingAssignmentRepository resolves teacher to class/subject bindings.
type TeachingAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeachingAssignmentRepository creates the repository.
func NewTeachingAssignmentRepository(db *sqlx.DB) *TeachingAssignmentRepository {
	return &TeachingAssignmentRepository{db: db}
}

// Exists reports whether the teacher holds an assignment for the class/subject pair.
func (r *TeachingAssignmentRepository) Exists(ctx context.Context, teacherID, classID, subjectID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM teaching_assignments
        WHERE teacher_id = $1 AND class_id = $2 AND subject_id = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, classID, subjectID); err != nil {
		return false, fmt.Errorf("check teaching assignment: %w", err)
	}
	return exists, nil
}
