package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sge-escolar/escola-api/internal/models"
)

// PeriodRepository resolves school years and grading periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindSchoolYearByID returns one school year.
func (r *PeriodRepository) FindSchoolYearByID(ctx context.Context, id string) (*models.SchoolYear, error) {
	const query = `SELECT id, name, start_date, end_date, is_active, created_at
        FROM school_years WHERE id = $1`
	var year models.SchoolYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// FindByID returns one grading period.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	const query = `SELECT id, school_year_id, name, sequence, start_date, end_date, is_active
        FROM periods WHERE id = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// ListBySchoolYear returns the grading periods of a school year in order.
func (r *PeriodRepository) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Period, error) {
	const query = `SELECT id, school_year_id, name, sequence, start_date, end_date, is_active
        FROM periods WHERE school_year_id = $1 ORDER BY sequence`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}
