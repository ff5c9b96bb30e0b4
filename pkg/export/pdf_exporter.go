package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Table into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the table's title and body. The first
// column gets half the page width; progress exports lead with the goal
// title, which needs the room.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, table.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	const pageWidth = 190.0
	widths := make([]float64, len(table.Columns))
	if len(table.Columns) == 1 {
		widths[0] = pageWidth
	} else {
		widths[0] = pageWidth / 2
		rest := (pageWidth - widths[0]) / float64(len(table.Columns)-1)
		for i := 1; i < len(widths); i++ {
			widths[i] = rest
		}
	}

	pdf.SetFont("Arial", "B", 10)
	for i, column := range table.Columns {
		pdf.CellFormat(widths[i], 8, column, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for i := range table.Columns {
			pdf.CellFormat(widths[i], 7, table.cell(row, i), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
