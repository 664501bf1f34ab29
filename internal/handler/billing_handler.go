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

// BillingHandler exposes billing and finance endpoints.
type BillingHandler struct {
	billing *service.BillingService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewBillingHandler constructs handler.
func NewBillingHandler(billing *service.BillingService, csv *export.CSVExporter, pdf *export.PDFExporter) *BillingHandler {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &BillingHandler{billing: billing, csv: csv, pdf: pdf}
}

// RegisterReceipt godoc
// @Summary Register a payment receipt
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.RegisterReceiptRequest true "Receipt payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /financeiro/recebimento [post]
func (h *BillingHandler) RegisterReceipt(c *gin.Context) {
	var req service.RegisterReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	receipt, installment, err := h.billing.RegisterReceipt(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recibo": receipt, "mensalidade": installment})
}

// GenerateInstallments godoc
// @Summary Generate monthly installments for a contract
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param payload body service.GenerateInstallmentsRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Router /financeiro/contratos/{id}/mensalidades [post]
func (h *BillingHandler) GenerateInstallments(c *gin.Context) {
	var req service.GenerateInstallmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	installments, err := h.billing.GenerateInstallments(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"geradas": len(installments), "mensalidades": installments})
}

// Cancel godoc
// @Summary Cancel a pending installment
// @Tags Finance
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /financeiro/mensalidades/{id}/cancelar [post]
func (h *BillingHandler) Cancel(c *gin.Context) {
	installment, err := h.billing.CancelInstallment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, installment, nil)
}

// Exempt godoc
// @Summary Exempt an installment
// @Tags Finance
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /financeiro/mensalidades/{id}/isentar [post]
func (h *BillingHandler) Exempt(c *gin.Context) {
	installment, err := h.billing.ExemptInstallment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, installment, nil)
}

// Summary godoc
// @Summary Monthly financial summary
// @Tags Finance
// @Produce json
// @Param mes query string false "Reference month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /financeiro/resumo [get]
func (h *BillingHandler) Summary(c *gin.Context) {
	summary, err := h.billing.MonthlySummary(c.Request.Context(), c.Query("mes"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Delinquents godoc
// @Summary Delinquency listing
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /financeiro/inadimplentes [get]
func (h *BillingHandler) Delinquents(c *gin.Context) {
	rows, err := h.billing.Delinquents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// DelinquentsCSV godoc
// @Summary Delinquency listing as CSV
// @Tags Finance
// @Produce text/csv
// @Success 200 {string} string "csv"
// @Router /financeiro/inadimplentes/export [get]
func (h *BillingHandler) DelinquentsCSV(c *gin.Context) {
	rows, err := h.billing.Delinquents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	headers := []string{"Matricula", "Aluno", "Responsavel", "Meses em Atraso", "Valor Total", "Vencimento Mais Antigo"}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Matricula":              row.EnrollmentID,
			"Aluno":                  row.StudentName,
			"Responsavel":            row.Responsible,
			"Meses em Atraso":        fmt.Sprintf("%d", row.MonthsOverdue),
			"Valor Total":            fmt.Sprintf("%.2f", row.TotalOwed),
			"Vencimento Mais Antigo": row.OldestDueDate.Format("2006-01-02"),
		})
	}
	payload, err := h.csv.Render(export.Dataset{Headers: headers, Rows: dataRows})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inadimplentes.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ReceiptPDF godoc
// @Summary Payment receipt document
// @Tags Finance
// @Produce application/pdf
// @Param id path string true "Receipt ID"
// @Success 200 {string} string "pdf"
// @Router /financeiro/recibos/{id}/pdf [get]
func (h *BillingHandler) ReceiptPDF(c *gin.Context) {
	detail, err := h.billing.ReceiptDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	doc := export.ReceiptDocument{
		ReceiptID:   detail.ID,
		StudentName: detail.StudentName,
		Responsible: detail.Responsible,
		Competence:  detail.Competence,
		Amount:      fmt.Sprintf("R$ %.2f", detail.Amount),
		Method:      detail.Method,
		ReceivedAt:  detail.ReceivedAt.Format("02/01/2006"),
		RecordedBy:  detail.RecorderName,
	}
	payload, err := h.pdf.RenderReceipt(doc)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt"))
		return
	}

	filename := fmt.Sprintf("recibo_%s.pdf", detail.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
