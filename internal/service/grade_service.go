package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sge-escolar/escola-api/internal/models"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
)

type gradeRepo interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error)
	BulkUpsert(ctx context.Context, entries []models.GradeEntry) error
	ListBySubject(ctx context.Context, enrollmentID, subjectID string) ([]models.GradeEntry, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListActiveByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
}

type periodReader interface {
	FindByID(ctx context.Context, id string) (*models.Period, error)
}

type assignmentChecker interface {
	Exists(ctx context.Context, teacherID, classID, subjectID string) (bool, error)
}

// GradeLaunchItem is one (enrollment, value) pair in a class-wide launch.
type GradeLaunchItem struct {
	EnrollmentID string  `json:"matricula_id" validate:"required"`
	Value        float64 `json:"valor"`
}

// LaunchGradesRequest carries a whole class-wide grade launch.
type LaunchGradesRequest struct {
	SubjectID string            `json:"disciplina_id" validate:"required"`
	PeriodID  string            `json:"periodo_id" validate:"required"`
	Entries   []GradeLaunchItem `json:"notas" validate:"required,min=1,dive"`
}

// GradeService orchestrates grade entry and average derivation.
type GradeService struct {
	grades      gradeRepo
	enrollments enrollmentReader
	periods     periodReader
	assignments assignmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(grades gradeRepo, enrollments enrollmentReader, periods periodReader, assignments assignmentChecker, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:      grades,
		enrollments: enrollments,
		periods:     periods,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
	}
}

// LaunchGrades upserts one grade entry per (enrollment, subject, period)
// in a single transaction. Any value outside [0,10] rejects the whole
// batch before any write, so a class-wide launch is never half-applied.
func (s *GradeService) LaunchGrades(ctx context.Context, actor *models.JWTClaims, req LaunchGradesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade launch payload")
	}

	fields := make(map[string]string)
	for i, item := range req.Entries {
		if item.Value < models.GradeMin || item.Value > models.GradeMax {
			fields[fmt.Sprintf("notas[%d].valor", i)] = fmt.Sprintf("value %.2f outside [%.0f, %.0f]", item.Value, models.GradeMin, models.GradeMax)
		}
	}
	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "grade values must be between 0 and 10"), fields)
	}

	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}

	classID := ""
	for _, item := range req.Entries {
		enrollment, err := s.enrollments.FindByID(ctx, item.EnrollmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("enrollment %s not found", item.EnrollmentID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		if enrollment.Status != models.EnrollmentStatusActive {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("enrollment %s is not active", item.EnrollmentID))
		}
		if classID == "" {
			classID = enrollment.ClassID
		} else if classID != enrollment.ClassID {
			return appErrors.Clone(appErrors.ErrValidation, "launch mixes enrollments from different classes")
		}
	}

	if err := s.authorizeLaunch(ctx, actor, classID, req.SubjectID); err != nil {
		return err
	}

	entries := make([]models.GradeEntry, 0, len(req.Entries))
	recordedBy := ""
	if actor != nil {
		recordedBy = actor.UserID
	}
	for _, item := range req.Entries {
		entries = append(entries, models.GradeEntry{
			EnrollmentID: item.EnrollmentID,
			SubjectID:    req.SubjectID,
			PeriodID:     req.PeriodID,
			Value:        item.Value,
			RecordedBy:   recordedBy,
		})
	}
	if err := s.grades.BulkUpsert(ctx, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade launch")
	}

	s.logger.Info("grades launched",
		zap.String("subject_id", req.SubjectID),
		zap.String("period_id", req.PeriodID),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// FinalAverage derives the arithmetic mean over the periods that have a
// recorded entry for the subject. Periods without an entry are excluded,
// not treated as zero. The result is rounded half-up to two decimals.
func (s *GradeService) FinalAverage(ctx context.Context, enrollmentID, subjectID string) (*models.SubjectAverage, error) {
	entries, err := s.grades.ListBySubject(ctx, enrollmentID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject grades")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grades recorded for subject")
	}
	sum := 0.0
	for _, entry := range entries {
		sum += entry.Value
	}
	avg := models.RoundHalfUp(sum/float64(len(entries)), 2)
	return &models.SubjectAverage{
		EnrollmentID: enrollmentID,
		SubjectID:    subjectID,
		Average:      avg,
		PeriodCount:  len(entries),
		Situation:    models.SituationForAverage(avg),
	}, nil
}

// List returns grade entries for inspection endpoints.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	entries, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade entries")
	}
	return entries, nil
}

// authorizeLaunch requires a teaching assignment for the class/subject
// pair unless the actor holds an administrative or coordination role.
func (s *GradeService) authorizeLaunch(ctx context.Context, actor *models.JWTClaims, classID, subjectID string) error {
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
