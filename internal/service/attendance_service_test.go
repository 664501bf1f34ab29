package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sge-escolar/escola-api/internal/models"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
)

type memAttendanceRepo struct {
	sessions map[string]models.AttendanceSession
	flags    map[string][]models.AttendanceFlag
	totals   []models.AttendanceTotals
	subjects []models.SubjectAttendancePct
}

func sessionKey(s *models.AttendanceSession) string {
	return s.ClassID + "|" + s.SubjectID + "|" + s.Date.Format("2006-01-02")
}

func (m *memAttendanceRepo) ReplaceSession(ctx context.Context, session *models.AttendanceSession, flags []models.AttendanceFlag) error {
	if m.sessions == nil {
		m.sessions = make(map[string]models.AttendanceSession)
		m.flags = make(map[string][]models.AttendanceFlag)
	}
	key := sessionKey(session)
	m.sessions[key] = *session
	m.flags[key] = append([]models.AttendanceFlag(nil), flags...)
	return nil
}

func (m *memAttendanceRepo) ClassTotals(ctx context.Context, classID string) ([]models.AttendanceTotals, error) {
	return m.totals, nil
}

func (m *memAttendanceRepo) SubjectTotals(ctx context.Context, enrollmentID string) ([]models.SubjectAttendancePct, error) {
	return m.subjects, nil
}

type stubRoster struct {
	enrollments []models.Enrollment
}

func (s *stubRoster) ListActiveByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	return s.enrollments, nil
}

func newAttendanceFixture() (*AttendanceService, *memAttendanceRepo, *stubAssignments) {
	repo := &memAttendanceRepo{}
	roster := &stubRoster{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "a1", ClassID: "t1", Status: models.EnrollmentStatusActive},
		{ID: "e2", StudentID: "a2", ClassID: "t1", Status: models.EnrollmentStatusActive},
	}}
	assignments := &stubAssignments{assigned: map[string]bool{}}
	return NewAttendanceService(repo, roster, assignments, nil, nil), repo, assignments
}

func TestLaunchAttendanceIsIdempotentPerSessionKey(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	actor := &models.JWTClaims{UserID: "u1", Role: models.RoleCoordenacao}

	first := LaunchAttendanceRequest{
		ClassID: "t1", SubjectID: "s1", Date: "2026-03-10", LessonCount: 2,
		Entries: []AttendanceFlagItem{
			{StudentID: "a1", Present: true},
			{StudentID: "a2", Present: false},
		},
	}
	require.NoError(t, svc.LaunchAttendance(context.Background(), actor, first))

	second := first
	second.Entries = []AttendanceFlagItem{{StudentID: "a1", Present: false}}
	require.NoError(t, svc.LaunchAttendance(context.Background(), actor, second))

	require.Len(t, repo.sessions, 1, "same key must not create a second session")
	key := "t1|s1|2026-03-10"
	require.Len(t, repo.flags[key], 1, "stored state depends only on the last submission")
	assert.Equal(t, "e1", repo.flags[key][0].EnrollmentID, "flags reference the resolved enrollment")
	assert.False(t, repo.flags[key][0].Present)
}

func TestLaunchAttendanceRejectsDuplicateStudent(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	actor := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}

	err := svc.LaunchAttendance(context.Background(), actor, LaunchAttendanceRequest{
		ClassID: "t1", SubjectID: "s1", Date: "2026-03-10", LessonCount: 1,
		Entries: []AttendanceFlagItem{
			{StudentID: "a1", Present: true},
			{StudentID: "a1", Present: false},
		},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "frequencias[1].aluno_id")
	assert.Empty(t, repo.sessions)
}

func TestLaunchAttendanceRejectsStudentOutsideClass(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	actor := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}

	err := svc.LaunchAttendance(context.Background(), actor, LaunchAttendanceRequest{
		ClassID: "t1", SubjectID: "s1", Date: "2026-03-10", LessonCount: 1,
		Entries: []AttendanceFlagItem{{StudentID: "a9", Present: true}},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "frequencias[0].aluno_id")
	assert.Empty(t, repo.sessions)
}

func TestLaunchAttendanceProfessorRequiresAssignment(t *testing.T) {
	svc, repo, assignments := newAttendanceFixture()
	actor := &models.JWTClaims{UserID: "prof1", Role: models.RoleProfessor}
	req := LaunchAttendanceRequest{
		ClassID: "t1", SubjectID: "s1", Date: "2026-03-10", LessonCount: 1,
		Entries: []AttendanceFlagItem{{StudentID: "a1", Present: true}},
	}

	err := svc.LaunchAttendance(context.Background(), actor, req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.sessions)

	assignments.assigned["prof1t1s1"] = true
	require.NoError(t, svc.LaunchAttendance(context.Background(), actor, req))
	assert.Len(t, repo.sessions, 1)
}

func TestLaunchAttendanceRejectsBadDate(t *testing.T) {
	svc, _, _ := newAttendanceFixture()
	actor := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}

	err := svc.LaunchAttendance(context.Background(), actor, LaunchAttendanceRequest{
		ClassID: "t1", SubjectID: "s1", Date: "10/03/2026", LessonCount: 1,
		Entries: []AttendanceFlagItem{{StudentID: "a1", Present: true}},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFrequencyReportDerivesPercentageAndRisk(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	repo.totals = []models.AttendanceTotals{
		{EnrollmentID: "e1", StudentName: "Ana", TotalLessons: 2, Presences: 2},
		{EnrollmentID: "e2", StudentName: "Bruno", TotalLessons: 40, Presences: 29},
		{EnrollmentID: "e3", StudentName: "Clara", TotalLessons: 40, Presences: 10},
		{EnrollmentID: "e4", StudentName: "Davi", TotalLessons: 0, Presences: 0},
	}

	rows, err := svc.FrequencyReport(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	require.NotNil(t, rows[0].Percentage)
	assert.Equal(t, 100.0, *rows[0].Percentage)
	assert.Equal(t, models.AttendanceRiskRegular, rows[0].Risk)

	require.NotNil(t, rows[1].Percentage)
	assert.Equal(t, 73.0, *rows[1].Percentage, "29/40 rounds half-up to 73")
	assert.Equal(t, models.AttendanceRiskAttention, rows[1].Risk)
	assert.Equal(t, 11, rows[1].Absences)

	assert.Equal(t, models.AttendanceRiskCritical, rows[2].Risk)

	assert.Nil(t, rows[3].Percentage, "percentage undefined without lesson-hours")
}

func TestFrequencyReportRequiresClass(t *testing.T) {
	svc, _, _ := newAttendanceFixture()
	_, err := svc.FrequencyReport(context.Background(), "")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubjectPercentages(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	repo.subjects = []models.SubjectAttendancePct{
		{SubjectID: "s1", TotalLessons: 40, Presences: 32},
		{SubjectID: "s2", TotalLessons: 0, Presences: 0},
	}

	result, err := svc.SubjectPercentages(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, result["s1"])
	assert.Equal(t, 80.0, *result["s1"])
	assert.Nil(t, result["s2"])
}
