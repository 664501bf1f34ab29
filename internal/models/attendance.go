package models

import "time"

// Attendance risk policy constants. Tiers use closed lower bounds,
// matching the grade threshold style.
const (
	RegularAttendancePct   = 75.0
	AttentionAttendancePct = 60.0
)

// AttendanceRisk labels the risk tier derived from an attendance percentage.
type AttendanceRisk string

const (
	AttendanceRiskRegular   AttendanceRisk = "REGULAR"
	AttendanceRiskAttention AttendanceRisk = "ATENCAO"
	AttendanceRiskCritical  AttendanceRisk = "CRITICO"
)

// RiskForPercentage derives the risk tier for an attendance percentage.
func RiskForPercentage(pct float64) AttendanceRisk {
	switch {
	case pct >= RegularAttendancePct:
		return AttendanceRiskRegular
	case pct >= AttentionAttendancePct:
		return AttendanceRiskAttention
	default:
		return AttendanceRiskCritical
	}
}

// AttendanceSession is one lesson record keyed by (class, subject, date).
// Re-launching the same key replaces all presence flags atomically.
type AttendanceSession struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	Date        time.Time `db:"date" json:"date"`
	LessonCount int       `db:"lesson_count" json:"lesson_count"`
	RecordedBy  string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceFlag is a per-student presence mark inside a session.
type AttendanceFlag struct {
	ID           string `db:"id" json:"id"`
	SessionID    string `db:"session_id" json:"session_id"`
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	Present      bool   `db:"present" json:"present"`
}

// AttendanceTotals aggregates lesson-hours and presences for a student.
type AttendanceTotals struct {
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	StudentName  string `db:"student_name" json:"student_name"`
	TotalLessons int    `db:"total_lessons" json:"total_lessons"`
	Presences    int    `db:"presences" json:"presences"`
}

// FrequencyRow is one student row in the class frequency report.
type FrequencyRow struct {
	EnrollmentID string         `json:"matricula_id"`
	StudentName  string         `json:"aluno"`
	TotalLessons int            `json:"total_aulas"`
	Presences    int            `json:"presencas"`
	Absences     int            `json:"faltas"`
	Percentage   *float64       `json:"percentual,omitempty"`
	Risk         AttendanceRisk `json:"situacao"`
}

// SubjectAttendancePct carries per-subject attendance for the report card.
type SubjectAttendancePct struct {
	SubjectID    string   `db:"subject_id"`
	TotalLessons int      `db:"total_lessons"`
	Presences    int      `db:"presences"`
	Percentage   *float64 `db:"-"`
}
