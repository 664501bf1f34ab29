package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/service"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
	"github.com/sge-escolar/escola-api/pkg/response"
)

// GradeHandler exposes grade ledger endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Launch godoc
// @Summary Launch grades for a class
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.LaunchGradesRequest true "Grade launch payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /notas/lancar [post]
func (h *GradeHandler) Launch(c *gin.Context) {
	var req service.LaunchGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.grades.LaunchGrades(c.Request.Context(), claimsFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "lancado", "notas": len(req.Entries)}, nil)
}

// List godoc
// @Summary List grade entries
// @Tags Grades
// @Produce json
// @Param matricula_id query string false "Filter by enrollment"
// @Param disciplina_id query string false "Filter by subject"
// @Param periodo_id query string false "Filter by period"
// @Success 200 {object} response.Envelope
// @Router /notas [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		EnrollmentID: c.Query("matricula_id"),
		SubjectID:    c.Query("disciplina_id"),
		PeriodID:     c.Query("periodo_id"),
	}
	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// FinalAverage godoc
// @Summary Final average for an enrollment and subject
// @Tags Grades
// @Produce json
// @Param matricula_id query string true "Enrollment"
// @Param disciplina_id query string true "Subject"
// @Success 200 {object} response.Envelope
// @Router /notas/media [get]
func (h *GradeHandler) FinalAverage(c *gin.Context) {
	enrollmentID := c.Query("matricula_id")
	subjectID := c.Query("disciplina_id")
	if enrollmentID == "" || subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "matricula_id and disciplina_id required"))
		return
	}
	avg, err := h.grades.FinalAverage(c.Request.Context(), enrollmentID, subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, avg, nil)
}
