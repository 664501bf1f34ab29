package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and school documents as PDF.
type PDFExporter struct {
	schoolName string
	schoolCity string
}

// NewPDFExporter constructs a PDF exporter stamped with the school identity.
func NewPDFExporter(schoolName, schoolCity string) *PDFExporter {
	return &PDFExporter{schoolName: schoolName, schoolCity: schoolCity}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	e.header(pdf)
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptDocument describes the payment-receipt fields rendered to PDF.
type ReceiptDocument struct {
	ReceiptID   string
	StudentName string
	Responsible string
	Competence  string
	Amount      string
	Method      string
	ReceivedAt  string
	RecordedBy  string
}

// RenderReceipt produces the payment-receipt document.
func (e *PDFExporter) RenderReceipt(doc ReceiptDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	e.header(pdf)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "RECIBO DE PAGAMENTO", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	lines := [][2]string{
		{"Recibo", doc.ReceiptID},
		{"Aluno", doc.StudentName},
		{"Responsavel", doc.Responsible},
		{"Competencia", doc.Competence},
		{"Valor recebido", doc.Amount},
		{"Forma de pagamento", doc.Method},
		{"Data do recebimento", doc.ReceivedAt},
		{"Registrado por", doc.RecordedBy},
	}
	for _, line := range lines {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 7, line[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, line[1], "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) header(pdf *gofpdf.Fpdf) {
	if e.schoolName == "" {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, e.schoolName, "", 1, "C", false, 0, "")
	if e.schoolCity != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, e.schoolCity, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}
