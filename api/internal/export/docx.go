package export

import (
	"bytes"

	"github.com/fumiama/go-docx"
)

// DocxMIME is the content type for generated Word documents.
const DocxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCX wraps plain text into a minimal single-paragraph Word document.
func DOCX(content string) ([]byte, error) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText(content)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
