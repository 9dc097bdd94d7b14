package infra

// pdf.go renders quotations and contracts as A4 documents with go-pdf/fpdf:
//   - title, document number, client, dates and status
//   - line table (item, quantity, unit price, line total)
//   - bold grand total and notes
//
// Core fonts only cover Latin-1. Set PDF_FONT_PATH to a TTF with Hangul
// coverage (e.g. NanumGothic) to render Korean names.

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PDFLine is one row of the line table.
type PDFLine struct {
	Code      string
	Name      string
	Unit      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// PDFDocument is the printable view of a quotation or contract.
type PDFDocument struct {
	Title      string
	Number     string
	ClientName string
	// Facts are label/value pairs printed under the header (dates, status).
	Facts [][2]string
	Lines []PDFLine
	Total decimal.Decimal
	Notes string
}

// PDFRenderer turns PDFDocuments into PDF bytes.
type PDFRenderer struct {
	FontPath string
}

func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{FontPath: fontPath}
}

const unicodeFont = "doc"

// Render returns the PDF encoding of doc.
func (r *PDFRenderer) Render(doc PDFDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)

	family := "Helvetica"
	text := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		pdf.AddUTF8Font(unicodeFont, "", r.FontPath)
		pdf.AddUTF8Font(unicodeFont, "B", r.FontPath)
		family = unicodeFont
		text = func(s string) string { return s }
	}
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf: load font: %w", err)
	}

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(contentW, 10, text(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(contentW, 6, text("No. "+doc.Number), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(contentW, 6, text(doc.ClientName), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 9)
	for _, f := range doc.Facts {
		pdf.CellFormat(35, 5, text(f[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-35, 5, text(f[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Line table ───────────────────────────────────────────────────────────
	colName := contentW * 0.46
	colQty := contentW * 0.14
	colUnit := contentW * 0.20
	colTotal := contentW * 0.20

	pdf.SetFont(family, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colName, 7, text("Item"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, text("Qty"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colUnit, 7, text("Unit price"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 7, text("Amount"), "1", 1, "R", true, 0, "")

	pdf.SetFont(family, "", 9)
	for _, l := range doc.Lines {
		name := l.Name
		if l.Code != "" {
			name = l.Code + " " + name
		}
		qty := fmt.Sprintf("%d", l.Quantity)
		if l.Unit != "" {
			qty += " " + l.Unit
		}
		pdf.CellFormat(colName, 6, text(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, text(qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colUnit, 6, l.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, l.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(colName+colQty+colUnit, 8, text("Total"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 8, doc.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont(family, "", 9)
		pdf.MultiCell(contentW, 5, text(doc.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
