package handle

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ocr-web/api/internal/export"
)

// DownloadDOCX wraps the posted text into a Word document served as an
// attachment. The generated artifact lives only for the duration of the
// response.
func (h *Handle) DownloadDOCX(c *gin.Context) {
	h.download(c, "docx", "ocr_results.docx", export.DocxMIME, export.DOCX)
}

// DownloadPDF is the same flow with a PDF rendering of the markdown.
func (h *Handle) DownloadPDF(c *gin.Context) {
	h.download(c, "pdf", "ocr_results.pdf", export.PDFMIME, export.PDF)
}

func (h *Handle) download(c *gin.Context, ext, attachment, mime string, build func(string) ([]byte, error)) {
	content := c.PostForm("content")
	if content == "" {
		abortError(c, http.StatusBadRequest, "No content provided")
		return
	}

	b, err := build(content)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to generate "+ext+": "+err.Error())
		return
	}

	temp, err := h.files.Save("temp_"+uuid.New().String()+"."+ext, bytes.NewReader(b))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to generate "+ext+": "+err.Error())
		return
	}
	defer h.files.Remove(temp)

	c.Header("Content-Type", mime)
	c.FileAttachment(temp, attachment)
}
