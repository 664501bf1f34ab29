package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sge-escolar/escola-api/internal/service"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
	"github.com/sge-escolar/escola-api/pkg/export"
	"github.com/sge-escolar/escola-api/pkg/response"
)

// AttendanceHandler exposes attendance ledger endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	csv        *export.CSVExporter
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService, csv *export.CSVExporter) *AttendanceHandler {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &AttendanceHandler{attendance: attendance, csv: csv}
}

// Launch godoc
// @Summary Launch attendance for a lesson
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.LaunchAttendanceRequest true "Attendance launch payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /frequencia/lancar [post]
func (h *AttendanceHandler) Launch(c *gin.Context) {
	var req service.LaunchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.LaunchAttendance(c.Request.Context(), claimsFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "lancado", "frequencias": len(req.Entries)}, nil)
}

// Report godoc
// @Summary Class frequency report
// @Tags Attendance
// @Produce json
// @Param turma_id query string true "Class"
// @Success 200 {object} response.Envelope
// @Router /frequencia/relatorio [get]
func (h *AttendanceHandler) Report(c *gin.Context) {
	rows, err := h.attendance.FrequencyReport(c.Request.Context(), c.Query("turma_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReportCSV godoc
// @Summary Class frequency report as CSV
// @Tags Attendance
// @Produce text/csv
// @Param turma_id query string true "Class"
// @Success 200 {string} string "csv"
// @Router /frequencia/relatorio/export [get]
func (h *AttendanceHandler) ReportCSV(c *gin.Context) {
	classID := c.Query("turma_id")
	rows, err := h.attendance.FrequencyReport(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}

	headers := []string{"Matricula", "Aluno", "Total Aulas", "Presencas", "Faltas", "Frequencia (%)", "Situacao"}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		pct := ""
		if row.Percentage != nil {
			pct = fmt.Sprintf("%.0f", *row.Percentage)
		}
		dataRows = append(dataRows, map[string]string{
			"Matricula":      row.EnrollmentID,
			"Aluno":          row.StudentName,
			"Total Aulas":    fmt.Sprintf("%d", row.TotalLessons),
			"Presencas":      fmt.Sprintf("%d", row.Presences),
			"Faltas":         fmt.Sprintf("%d", row.Absences),
			"Frequencia (%)": pct,
			"Situacao":       string(row.Risk),
		})
	}
	payload, err := h.csv.Render(export.Dataset{Headers: headers, Rows: dataRows})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}

	filename := fmt.Sprintf("frequencia_%s.csv", classID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
