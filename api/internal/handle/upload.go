package handle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ocr-web/api/internal/mistral"
	"ocr-web/api/internal/ocr"
	"ocr-web/api/internal/util"
)

type uploadResponse struct {
	ocr.Document
	PreviewFile string `json:"preview_file"`
}

// Upload handles single-file synchronous OCR: validate, store a working
// copy plus a preview copy, run the document through the remote service
// and the normalizer, and always clean up the working copy.
func (h *Handle) Upload(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes() {
		abortError(c, http.StatusRequestEntityTooLarge, h.fileTooLargeMessage())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes())

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, h.fileTooLargeMessage())
			return
		}
		abortError(c, http.StatusBadRequest, "No document part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		abortError(c, http.StatusBadRequest, "No selected file")
		return
	}
	if !util.ExtAllowed(header.Filename) {
		abortError(c, http.StatusBadRequest, "Unsupported file type. Please upload a PDF or image file (JPG, PNG, TIFF, BMP)")
		return
	}
	client := h.svc.Client()
	if client == nil {
		abortError(c, http.StatusBadRequest, "API key not configured")
		return
	}
	includeImages := c.DefaultPostForm("include_images", "true") != "false"

	name := util.SecureFilename(header.Filename)
	id := uuid.New().String()

	work, err := h.files.Save("tmp_"+id+"_"+name, file)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to store upload: "+err.Error())
		return
	}
	defer h.files.Remove(work)

	previewName := id + "_" + name
	preview, err := h.files.Duplicate(work, previewName)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to store preview copy: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 180*time.Second)
	defer cancel()

	doc, err := processFile(ctx, client, work, name, includeImages)
	if err != nil {
		h.files.Remove(preview)
		logrus.WithField("file", name).WithError(err).Error("upload processing failed")
		abortError(c, http.StatusInternalServerError, h.friendlyError(err))
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Document:    doc,
		PreviewFile: "/preview/" + previewName,
	})
}

// processFile runs one stored file through the remote OCR service. PDFs go
// through the files API and a signed URL; images are sent inline as a
// base64 data URL.
func processFile(ctx context.Context, client *mistral.Client, path, name string, includeImages bool) (ocr.Document, error) {
	var doc mistral.Document
	if util.IsPDF(name) {
		f, err := os.Open(path)
		if err != nil {
			return ocr.Document{}, err
		}
		fileID, err := client.UploadFile(ctx, name, f, util.MimeByExt(name), "ocr")
		f.Close()
		if err != nil {
			return ocr.Document{}, err
		}
		url, err := client.SignedURL(ctx, fileID)
		if err != nil {
			return ocr.Document{}, err
		}
		doc = mistral.Document{
			Type:         "document_url",
			DocumentURL:  url,
			DocumentName: name,
		}
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return ocr.Document{}, err
		}
		// sniffed content type wins over the extension when it is an image
		mime := util.SniffMimeHTTP(b)
		if !strings.HasPrefix(mime, "image/") {
			mime = util.MimeByExt(name)
		}
		doc = mistral.Document{
			Type:     "image_url",
			ImageURL: util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(b)),
		}
	}

	resp, body, err := client.Process(ctx, doc, includeImages)
	if err != nil {
		return ocr.Document{}, err
	}
	return ocr.Normalize(rawFor(resp, body)), nil
}

// rawFor picks the accessor for whichever response shape came back: the
// typed view when it recognized the payload, otherwise the free-form one.
func rawFor(resp *mistral.OCRResponse, body []byte) ocr.Raw {
	if resp != nil && (len(resp.Pages) > 0 || resp.Text != "") {
		return ocr.FromResponse(resp)
	}
	return ocr.FromJSON(body)
}
