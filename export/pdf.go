package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// WritePDF renders m as an A4 PDF using the core Helvetica font.
// Text is translated to cp1252 so Spanish accents render.
func WritePDF(w io.Writer, m Memorandum) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.SetTitle(m.Title, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", doc.PageNo())), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, tr(m.Title), "", "L", false)
	doc.Ln(3)

	for _, d := range m.Details {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(45, 6, tr(d.Label+":"), "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 6, tr(d.Value), "", "L", false)
	}

	heading := func(text string) {
		doc.Ln(4)
		doc.SetFont("Helvetica", "B", 14)
		doc.MultiCell(0, 8, tr(text), "", "L", false)
		doc.Ln(1)
	}
	body := func(content string) {
		doc.SetFont("Helvetica", "", 11)
		for _, p := range paragraphs(content) {
			doc.MultiCell(0, 6, tr(p), "", "J", false)
			doc.Ln(2)
		}
	}

	if len(paragraphs(m.Summary)) > 0 {
		heading("Resumen")
		body(m.Summary)
	}
	for _, s := range m.Sections {
		heading(s.Title)
		body(s.Content)
	}

	return doc.Output(w)
}
