package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Enrollments change status but are never
// physically deleted.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ATIVA"
	EnrollmentStatusSuspended EnrollmentStatus = "SUSPENSA"
	EnrollmentStatusWithdrawn EnrollmentStatus = "CANCELADA"
	EnrollmentStatusCompleted EnrollmentStatus = "CONCLUIDA"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusSuspended, EnrollmentStatusWithdrawn, EnrollmentStatusCompleted:
		return true
	default:
		return false
	}
}

// Enrollment captures a student's registration to a class within a school year.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	Number       string           `db:"number" json:"number"`
	StudentID    string           `db:"student_id" json:"student_id"`
	ClassID      string           `db:"class_id" json:"class_id"`
	SchoolYearID string           `db:"school_year_id" json:"school_year_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt   time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and class info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}
