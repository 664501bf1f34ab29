package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/service"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
	"github.com/sge-escolar/escola-api/pkg/export"
	"github.com/sge-escolar/escola-api/pkg/response"
)

// ReportHandler exposes the report card endpoints.
type ReportHandler struct {
	reports *service.ReportService
	pdf     *export.PDFExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, pdf *export.PDFExporter) *ReportHandler {
	return &ReportHandler{reports: reports, pdf: pdf}
}

// Boletim godoc
// @Summary Student report card
// @Tags Reports
// @Produce json
// @Param matricula_id path string true "Enrollment ID"
// @Param periodos query string false "Comma-separated grading period IDs"
// @Success 200 {object} response.Envelope
// @Router /boletim/{matricula_id} [get]
func (h *ReportHandler) Boletim(c *gin.Context) {
	boletim, err := h.reports.Boletim(c.Request.Context(), c.Param("matricula_id"), periodFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, boletim, nil)
}

// periodFilter parses the optional periodos query parameter.
func periodFilter(c *gin.Context) []string {
	raw := c.Query("periodos")
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BoletimPDF godoc
// @Summary Student report card as PDF
// @Tags Reports
// @Produce application/pdf
// @Param matricula_id path string true "Enrollment ID"
// @Success 200 {string} string "pdf"
// @Router /boletim/{matricula_id}/pdf [get]
func (h *ReportHandler) BoletimPDF(c *gin.Context) {
	boletim, err := h.reports.Boletim(c.Request.Context(), c.Param("matricula_id"), periodFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.pdf.Render(boletimDataset(boletim), fmt.Sprintf("Boletim Escolar - %s", boletim.StudentName))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card"))
		return
	}

	filename := fmt.Sprintf("boletim_%s.pdf", boletim.EnrollmentID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// boletimDataset flattens the report card into the tabular export shape:
// one column per grading period plus the derived columns.
func boletimDataset(b *models.Boletim) export.Dataset {
	headers := []string{"Disciplina"}
	for _, period := range b.Periods {
		headers = append(headers, period.Name)
	}
	headers = append(headers, "Media Final", "Frequencia (%)", "Situacao")

	rows := make([]map[string]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		record := map[string]string{"Disciplina": row.SubjectName, "Situacao": row.Situation}
		for _, period := range b.Periods {
			if score := row.PeriodScores[period.Name]; score != nil {
				record[period.Name] = fmt.Sprintf("%.1f", *score)
			} else {
				record[period.Name] = "-"
			}
		}
		if row.FinalAverage != nil {
			record["Media Final"] = fmt.Sprintf("%.2f", *row.FinalAverage)
		} else {
			record["Media Final"] = "-"
		}
		if row.AttendancePct != nil {
			record["Frequencia (%)"] = fmt.Sprintf("%.0f", *row.AttendancePct)
		} else {
			record["Frequencia (%)"] = "-"
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
