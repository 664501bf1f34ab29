package models

import (
	"math"
	"time"
)

// Grade value policy constants. Scores live in the closed interval
// [GradeMin, GradeMax]; situation thresholds use closed lower bounds.
const (
	GradeMin = 0.0
	GradeMax = 10.0

	PassingAverage  = 7.0
	RemedialAverage = 5.0
)

// GradeSituation labels the outcome derived from a final average.
type GradeSituation string

const (
	GradeSituationPassed   GradeSituation = "APROVADO"
	GradeSituationRemedial GradeSituation = "RECUPERACAO"
	GradeSituationFailed   GradeSituation = "REPROVADO"
)

// SituationForAverage derives the pass/remedial/fail label for an average.
func SituationForAverage(avg float64) GradeSituation {
	switch {
	case avg >= PassingAverage:
		return GradeSituationPassed
	case avg >= RemedialAverage:
		return GradeSituationRemedial
	default:
		return GradeSituationFailed
	}
}

// RoundHalfUp rounds to the given number of decimal places with ties
// going away from zero. The half-up rule is used for every derived
// percentage and average in the system.
func RoundHalfUp(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Floor(v*factor+0.5) / factor
}

// GradeEntry records one score for (enrollment, subject, period).
// Re-launching the same triple overwrites the previous value.
type GradeEntry struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	PeriodID     string    `db:"period_id" json:"period_id"`
	Value        float64   `db:"value" json:"value"`
	RecordedBy   string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter allows querying of grade entries.
type GradeFilter struct {
	EnrollmentID string
	SubjectID    string
	PeriodID     string
}

// SubjectAverage is the derived final average for an enrollment + subject.
// Periods without a recorded entry are excluded from the mean.
type SubjectAverage struct {
	EnrollmentID string         `json:"enrollment_id"`
	SubjectID    string         `json:"subject_id"`
	Average      float64        `json:"average"`
	PeriodCount  int            `json:"period_count"`
	Situation    GradeSituation `json:"situation"`
}
