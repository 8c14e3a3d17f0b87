package export

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFMIME is the content type for generated PDF documents.
const PDFMIME = "application/pdf"

// PDF renders OCR markdown as a simple PDF: headings sized by level,
// code blocks in monospace, everything else as body text. Inline data-URL
// images are dropped from the output.
func PDF(content string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	inCodeBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}
		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, line, "", "L", true)
			continue
		}
		if trimmed == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(trimmed, "![") {
			// embedded image reference
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			size := 16.0 - float64(level)
			if size < 10 {
				size = 10
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 7, strings.TrimSpace(trimmed[level:]), "", "L", false)
			pdf.Ln(1)
			continue
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
