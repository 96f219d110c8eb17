// Package report renders tabular datasets as CSV or PDF documents.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var ErrNoData = errors.New("no data available to export")

// Table is one named dataset. Every row has len(Headers) cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (t Table) Empty() bool { return len(t.Rows) == 0 }

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, t Table) error {
	if t.Empty() {
		return ErrNoData
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Metric is a labelled summary value printed above the tables.
type Metric struct {
	Label string
	Value string
}

// Document is a PDF summary: headline metrics then zero or more tables.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Metrics     []Metric
	Tables      []Table
}

const (
	pageWidth = 190.0
	rowHeight = 7.0
)

// WritePDF renders doc as an A4 portrait PDF.
func WritePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated "+doc.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	if len(doc.Metrics) > 0 {
		pdf.SetFont("Helvetica", "", 11)
		for _, m := range doc.Metrics {
			pdf.CellFormat(70, rowHeight, m.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, rowHeight, m.Value, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	for _, t := range doc.Tables {
		writeTable(pdf, t)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeTable(pdf *gofpdf.Fpdf, t Table) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, t.Title)
	pdf.Ln(9)
	if len(t.Headers) == 0 {
		return
	}

	colWidth := pageWidth / float64(len(t.Headers))
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range t.Headers {
		pdf.CellFormat(colWidth, rowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if t.Empty() {
		pdf.CellFormat(pageWidth, rowHeight, "No data", "1", 1, "C", false, 0, "")
	}
	for _, row := range t.Rows {
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(colWidth, rowHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
