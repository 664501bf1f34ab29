package models

// Situation labels that only exist on the report card. Attendance below
// the legal minimum overrides any grade-derived situation.
const (
	SituationFailedByAbsence = "REPROVADO POR FALTA"
	SituationNotEvaluated    = "SEM AVALIACAO"
)

// BoletimRow is one subject row on a student's report card.
type BoletimRow struct {
	SubjectID     string              `json:"disciplina_id"`
	SubjectName   string              `json:"disciplina"`
	PeriodScores  map[string]*float64 `json:"notas"`
	FinalAverage  *float64            `json:"media_final,omitempty"`
	AttendancePct *float64            `json:"frequencia,omitempty"`
	Situation     string              `json:"situacao"`
}

// Boletim is the per-enrollment report card joining grades and attendance.
type Boletim struct {
	EnrollmentID string       `json:"matricula_id"`
	StudentName  string       `json:"aluno"`
	ClassName    string       `json:"turma"`
	SchoolYear   string       `json:"ano_letivo"`
	Periods      []Period     `json:"periodos"`
	Rows         []BoletimRow `json:"disciplinas"`
}
