package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sge-escolar/escola-api/internal/middleware"
	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/service"
)

type fakeGradeRepo struct {
	upserted  []models.GradeEntry
	bySubject []models.GradeEntry
}

func (f *fakeGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	return f.upserted, nil
}

func (f *fakeGradeRepo) BulkUpsert(ctx context.Context, entries []models.GradeEntry) error {
	f.upserted = append(f.upserted, entries...)
	return nil
}

func (f *fakeGradeRepo) ListBySubject(ctx context.Context, enrollmentID, subjectID string) ([]models.GradeEntry, error) {
	return f.bySubject, nil
}

type fakeEnrollments struct{}

func (fakeEnrollments) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	return &models.Enrollment{ID: id, ClassID: "t1", Status: models.EnrollmentStatusActive}, nil
}

func (fakeEnrollments) ListActiveByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	return nil, nil
}

type fakePeriods struct{}

func (fakePeriods) FindByID(ctx context.Context, id string) (*models.Period, error) {
	return &models.Period{ID: id, Name: "1º Bimestre"}, nil
}

type fakeAssignments struct{}

func (fakeAssignments) Exists(ctx context.Context, teacherID, classID, subjectID string) (bool, error) {
	return true, nil
}

func newGradeHandler() (*GradeHandler, *fakeGradeRepo) {
	repo := &fakeGradeRepo{}
	svc := service.NewGradeService(repo, fakeEnrollments{}, fakePeriods{}, fakeAssignments{}, nil, nil)
	return NewGradeHandler(svc), repo
}

func TestGradeLaunchBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notas/lancar", bytes.NewBufferString("{not json"))

	handler.Launch(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeLaunchSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newGradeHandler()

	payload := map[string]interface{}{
		"disciplina_id": "s1",
		"periodo_id":    "p1",
		"notas": []map[string]interface{}{
			{"matricula_id": "e1", "valor": 8.5},
			{"matricula_id": "e2", "valor": 6.0},
		},
	}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notas/lancar", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "prof1", Role: models.RoleProfessor})

	handler.Launch(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.upserted, 2)
	assert.Equal(t, "prof1", repo.upserted[0].RecordedBy)
}

func TestGradeLaunchOutOfRangeValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newGradeHandler()

	payload := map[string]interface{}{
		"disciplina_id": "s1",
		"periodo_id":    "p1",
		"notas": []map[string]interface{}{
			{"matricula_id": "e1", "valor": 11.0},
		},
	}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notas/lancar", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})

	handler.Launch(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, repo.upserted)

	var envelope struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Fields, "notas[0].valor")
}

func TestFinalAverageRequiresParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notas/media", nil)

	handler.FinalAverage(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
