package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sge-escolar/escola-api/internal/models"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
)

type attendanceRepository interface {
	ReplaceSession(ctx context.Context, session *models.AttendanceSession, flags []models.AttendanceFlag) error
	ClassTotals(ctx context.Context, classID string) ([]models.AttendanceTotals, error)
	SubjectTotals(ctx context.Context, enrollmentID string) ([]models.SubjectAttendancePct, error)
}

type classRoster interface {
	ListActiveByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
}

// AttendanceFlagItem marks one student inside a session launch. Students
// are addressed by their own id; the service resolves the enrollment
// through the class roster.
type AttendanceFlagItem struct {
	StudentID string `json:"aluno_id" validate:"required"`
	Present   bool   `json:"presente"`
}

// LaunchAttendanceRequest carries one lesson's attendance launch.
type LaunchAttendanceRequest struct {
	ClassID     string               `json:"turma_id" validate:"required"`
	SubjectID   string               `json:"disciplina_id" validate:"required"`
	Date        string               `json:"data_aula" validate:"required,datetime=2006-01-02"`
	LessonCount int                  `json:"numero_aulas" validate:"required,min=1"`
	Entries     []AttendanceFlagItem `json:"frequencias" validate:"required,min=1,dive"`
}

// AttendanceService coordinates session launches and frequency reports.
type AttendanceService struct {
	repo        attendanceRepository
	roster      classRoster
	assignments assignmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, roster classRoster, assignments assignmentChecker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, roster: roster, assignments: assignments, validator: validate, logger: logger}
}

// LaunchAttendance creates or replaces the session keyed by
// (class, subject, date). All prior presence flags for that exact key are
// discarded and replaced atomically, so re-submitting the same batch is
// idempotent: the stored state depends only on the last submission.
func (s *AttendanceService) LaunchAttendance(ctx context.Context, actor *models.JWTClaims, req LaunchAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance launch payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "data_aula must be YYYY-MM-DD")
	}

	if err := s.authorizeLaunch(ctx, actor, req.ClassID, req.SubjectID); err != nil {
		return err
	}

	enrollments, err := s.roster.ListActiveByClass(ctx, req.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	byStudent := make(map[string]string, len(enrollments))
	for _, e := range enrollments {
		byStudent[e.StudentID] = e.ID
	}

	seen := make(map[string]bool, len(req.Entries))
	flags := make([]models.AttendanceFlag, 0, len(req.Entries))
	for i, item := range req.Entries {
		if seen[item.StudentID] {
			return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "duplicate student in attendance batch"),
				map[string]string{fmt.Sprintf("frequencias[%d].aluno_id", i): "duplicated"})
		}
		seen[item.StudentID] = true
		enrollmentID, ok := byStudent[item.StudentID]
		if !ok {
			return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "student has no active enrollment in this class"),
				map[string]string{fmt.Sprintf("frequencias[%d].aluno_id", i): "no active enrollment in class"})
		}
		flags = append(flags, models.AttendanceFlag{EnrollmentID: enrollmentID, Present: item.Present})
	}

	recordedBy := ""
	if actor != nil {
		recordedBy = actor.UserID
	}
	session := &models.AttendanceSession{
		ClassID:     req.ClassID,
		SubjectID:   req.SubjectID,
		Date:        date,
		LessonCount: req.LessonCount,
		RecordedBy:  recordedBy,
	}
	if err := s.repo.ReplaceSession(ctx, session, flags); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance session")
	}

	s.logger.Info("attendance launched",
		zap.String("class_id", req.ClassID),
		zap.String("subject_id", req.SubjectID),
		zap.String("date", req.Date),
		zap.Int("students", len(flags)),
	)
	return nil
}

// FrequencyReport returns per-student totals, percentage and risk tier for
// a class. Percentage is round-half-up(presences/total*100) and undefined
// when no lesson-hours were recorded.
func (s *AttendanceService) FrequencyReport(ctx context.Context, classID string) ([]models.FrequencyRow, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "turma_id is required")
	}
	totals, err := s.repo.ClassTotals(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate class attendance")
	}
	rows := make([]models.FrequencyRow, 0, len(totals))
	for _, t := range totals {
		row := models.FrequencyRow{
			EnrollmentID: t.EnrollmentID,
			StudentName:  t.StudentName,
			TotalLessons: t.TotalLessons,
			Presences:    t.Presences,
			Absences:     t.TotalLessons - t.Presences,
			Risk:         models.AttendanceRiskCritical,
		}
		if t.TotalLessons > 0 {
			pct := models.RoundHalfUp(float64(t.Presences)/float64(t.TotalLessons)*100, 0)
			row.Percentage = &pct
			row.Risk = models.RiskForPercentage(pct)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SubjectPercentages derives per-subject attendance percentages for one
// enrollment, feeding the report card.
func (s *AttendanceService) SubjectPercentages(ctx context.Context, enrollmentID string) (map[string]*float64, error) {
	totals, err := s.repo.SubjectTotals(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate subject attendance")
	}
	result := make(map[string]*float64, len(totals))
	for _, t := range totals {
		if t.TotalLessons == 0 {
			result[t.SubjectID] = nil
			continue
		}
		pct := models.RoundHalfUp(float64(t.Presences)/float64(t.TotalLessons)*100, 0)
		result[t.SubjectID] = &pct
	}
	return result, nil
}

func (s *AttendanceService) authorizeLaunch(ctx context.Context, actor *models.JWTClaims, classID, subjectID string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleCoordenacao:
		return nil
	case models.RoleProfessor:
		assigned, err := s.assignments.Exists(ctx, actor.UserID, classID, subjectID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teaching assignment")
		}
		if !assigned {
			return appErrors.Clone(appErrors.ErrForbidden, "no teaching assignment for this class and subject")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
}
