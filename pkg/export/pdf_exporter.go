package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a report: title, summary fields, a table and trailing notes.
type PDFExporter struct {
	pageWidth float64
}

// NewPDFExporter constructs a PDF exporter for A4 portrait pages.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{pageWidth: 190}
}

// Render creates the PDF document. A dataset without headers renders the summary only.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 && len(data.Summary) == 0 {
		return nil, fmt.Errorf("pdf requires a summary or at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	if len(data.Summary) > 0 {
		labelWidth := e.pageWidth * 0.4
		for _, field := range data.Summary {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(labelWidth, 7, tr(field.Label), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(e.pageWidth-labelWidth, 7, tr(field.Value), "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(data.Headers) > 0 {
		pdf.SetFont("Arial", "B", 10)
		colWidth := e.pageWidth / float64(len(data.Headers))
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range data.Rows {
			for _, header := range data.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if len(data.Notes) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		for _, note := range data.Notes {
			pdf.MultiCell(0, 5, tr(note), "", "", false)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
