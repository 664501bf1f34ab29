package models

import "time"

// SchoolYear models an academic year in the institution calendar.
type SchoolYear struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Period is a grading term (bimester) within a school year.
type Period struct {
	ID           string    `db:"id" json:"id"`
	SchoolYearID string    `db:"school_year_id" json:"school_year_id"`
	Name         string    `db:"name" json:"name"`
	Sequence     int       `db:"sequence" json:"sequence"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// AcademicScope carries the explicit year/period context into every
// grade, attendance and billing call. It replaces any session-global
// "current period" state.
type AcademicScope struct {
	SchoolYearID string
	PeriodID     string
}

// Subject is a taught discipline.
type Subject struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Code      string  `db:"code" json:"code"`
	Workload  int     `db:"workload" json:"workload"`
	ClassID   *string `db:"class_id" json:"class_id,omitempty"`
	TeacherID *string `db:"teacher_id" json:"teacher_id,omitempty"`
}

// Class groups enrollments within a school year.
type Class struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	SchoolYearID string `db:"school_year_id" json:"school_year_id"`
	Shift        string `db:"shift" json:"shift"`
}

// TeachingAssignment binds a teacher user to a class/subject pair.
type TeachingAssignment struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
