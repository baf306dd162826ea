package pdf

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Renderer lays plain-text letters out on A4 pages. Body text is set in a
// monospaced face so the fixed-width annexure tables keep their columns.
type Renderer struct {
	Company string
}

func NewRenderer(company string) *Renderer {
	return &Renderer{Company: company}
}

func (r *Renderer) Render(title, body string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	if r.Company != "" {
		pdf.SetAuthor(r.Company, true)
	}
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, tr(title), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Courier", "", 10)
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
