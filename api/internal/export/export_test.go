package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestDOCXProducesWordDocument(t *testing.T) {
	b, err := DOCX("Extracted text from the scan")
	if err != nil {
		t.Fatalf("DOCX: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		t.Fatal("archive is missing word/document.xml")
	}
	rc, err := doc.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	xml, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(xml), "Extracted text from the scan") {
		t.Fatal("document body does not contain the exported text")
	}
}

func TestPDFRendersMarkdown(t *testing.T) {
	content := strings.Join([]string{
		"# Invoice",
		"",
		"Total due: 1200 EUR",
		"![img-0](data:image/png;base64,AAAA)",
		"```",
		"code line",
		"```",
	}, "\n")

	b, err := PDF(content)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", b[:8])
	}
}

func TestPDFEmptyContent(t *testing.T) {
	b, err := PDF("")
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatal("empty input should still yield a valid document")
	}
}
