package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sge-escolar/escola-api/internal/models"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
)

type enrollmentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type subjectLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.Subject, error)
}

type gradeFetcher interface {
	FetchByEnrollment(ctx context.Context, enrollmentID string) (map[string][]models.GradeEntry, error)
}

type attendanceAggregator interface {
	SubjectPercentages(ctx context.Context, enrollmentID string) (map[string]*float64, error)
}

type schoolYearPeriods interface {
	FindSchoolYearByID(ctx context.Context, id string) (*models.SchoolYear, error)
	ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Period, error)
}

// ReportService joins grades and attendance into the report card. It owns
// no state of its own: everything it serves is derived on demand from the
// grade and attendance ledgers.
type ReportService struct {
	enrollments enrollmentDetailReader
	subjects    subjectLister
	grades      gradeFetcher
	attendance  attendanceAggregator
	calendar    schoolYearPeriods
	logger      *zap.Logger
}

// NewReportService constructs the report aggregator.
func NewReportService(enrollments enrollmentDetailReader, subjects subjectLister, grades gradeFetcher, attendance attendanceAggregator, calendar schoolYearPeriods, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		enrollments: enrollments,
		subjects:    subjects,
		grades:      grades,
		attendance:  attendance,
		calendar:    calendar,
		logger:      logger,
	}
}

// Boletim assembles the report card for one enrollment: one row per
// subject of the student's class, with per-period scores, the final
// average over recorded periods, attendance percentage and the combined
// situation. A subject average below the remedial threshold fails the
// subject; attendance below the legal minimum fails it regardless of
// grades. A non-empty periodIDs restricts the card to those grading
// periods; the average is then taken over the restricted set.
func (s *ReportService) Boletim(ctx context.Context, enrollmentID string, periodIDs []string) (*models.Boletim, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "matricula_id is required")
	}
	detail, err := s.enrollments.FindDetailByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	year, err := s.calendar.FindSchoolYearByID(ctx, detail.SchoolYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}
	periods, err := s.calendar.ListBySchoolYear(ctx, detail.SchoolYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading periods")
	}
	if len(periodIDs) > 0 {
		periods, err = filterPeriods(periods, periodIDs)
		if err != nil {
			return nil, err
		}
	}

	subjects, err := s.subjects.ListByClass(ctx, detail.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	gradesBySubject, err := s.grades.FetchByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}
	attendanceBySubject, err := s.attendance.SubjectPercentages(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.BoletimRow, 0, len(subjects))
	for _, subject := range subjects {
		rows = append(rows, buildBoletimRow(subject, periods, gradesBySubject[subject.ID], attendanceBySubject[subject.ID]))
	}

	return &models.Boletim{
		EnrollmentID: detail.ID,
		StudentName:  detail.StudentName,
		ClassName:    detail.ClassName,
		SchoolYear:   year.Name,
		Periods:      periods,
		Rows:         rows,
	}, nil
}

// filterPeriods keeps the requested grading periods in calendar order.
func filterPeriods(periods []models.Period, periodIDs []string) ([]models.Period, error) {
	want := make(map[string]bool, len(periodIDs))
	for _, id := range periodIDs {
		want[id] = true
	}
	filtered := make([]models.Period, 0, len(want))
	for _, period := range periods {
		if want[period.ID] {
			filtered = append(filtered, period)
			delete(want, period.ID)
		}
	}
	if len(want) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grading period in periodos filter")
	}
	return filtered, nil
}

// buildBoletimRow derives one subject row. Periods without an entry show
// as null scores and are excluded from the average.
func buildBoletimRow(subject models.Subject, periods []models.Period, entries []models.GradeEntry, attendancePct *float64) models.BoletimRow {
	byPeriod := make(map[string]float64, len(entries))
	for _, entry := range entries {
		byPeriod[entry.PeriodID] = entry.Value
	}

	scores := make(map[string]*float64, len(periods))
	sum := 0.0
	count := 0
	for _, period := range periods {
		if value, ok := byPeriod[period.ID]; ok {
			v := value
			scores[period.Name] = &v
			sum += value
			count++
		} else {
			scores[period.Name] = nil
		}
	}

	row := models.BoletimRow{
		SubjectID:     subject.ID,
		SubjectName:   subject.Name,
		PeriodScores:  scores,
		AttendancePct: attendancePct,
		Situation:     models.SituationNotEvaluated,
	}
	if count > 0 {
		avg := models.RoundHalfUp(sum/float64(count), 2)
		row.FinalAverage = &avg
		row.Situation = string(models.SituationForAverage(avg))
	}
	if attendancePct != nil && *attendancePct < models.RegularAttendancePct {
		row.Situation = models.SituationFailedByAbsence
	}
	return row
}
