package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ocr-web/api/internal/batch"
	"ocr-web/api/internal/mistral"
	"ocr-web/api/internal/util"
)

// BatchUpload accepts multiple files, wraps them in one batch submission
// and returns the job id immediately; the browser polls BatchStatus.
// Unsupported extensions are skipped, not fatal. Every temporary file is
// removed before returning, whatever the outcome.
func (h *Handle) BatchUpload(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes() {
		abortError(c, http.StatusRequestEntityTooLarge, h.fileTooLargeMessage())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes())

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, h.fileTooLargeMessage())
			return
		}
		abortError(c, http.StatusBadRequest, "No documents provided")
		return
	}
	files := form.File["documents[]"]
	if len(files) == 0 {
		abortError(c, http.StatusBadRequest, "No documents provided")
		return
	}
	allEmpty := true
	for _, fh := range files {
		if fh.Filename != "" {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		abortError(c, http.StatusBadRequest, "No selected files")
		return
	}
	client := h.svc.Client()
	if client == nil {
		abortError(c, http.StatusBadRequest, "API key not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 300*time.Second)
	defer cancel()

	orch := batch.New(client)

	var tempPaths []string
	defer func() {
		for _, p := range tempPaths {
			h.files.Remove(p)
		}
	}()

	var entries []mistral.BatchEntry
	for _, fh := range files {
		if fh.Filename == "" || !util.ExtAllowed(fh.Filename) {
			continue
		}
		name := util.SecureFilename(fh.Filename)

		src, err := fh.Open()
		if err != nil {
			logrus.WithField("file", name).WithError(err).Warn("skipping unreadable upload")
			continue
		}
		path, err := h.files.Save("batchtmp_"+uuid.New().String()+"_"+name, src)
		src.Close()
		if err != nil {
			abortError(c, http.StatusInternalServerError, "Failed to store upload: "+err.Error())
			return
		}
		tempPaths = append(tempPaths, path)

		entry, err := orch.BuildEntry(ctx, name, path)
		if err != nil {
			// one failed item degrades that item, not the batch
			logrus.WithField("file", name).WithError(err).Warn("skipping file that could not be prepared")
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		abortError(c, http.StatusBadRequest, "No valid files to process")
		return
	}

	job, err := orch.Submit(ctx, entries)
	if err != nil {
		logrus.WithError(err).Error("batch submission failed")
		abortError(c, http.StatusInternalServerError, h.friendlyError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      job.ID,
		"status":      "processing",
		"total_files": len(entries),
	})
}

// BatchStatus polls the remote job. Completed jobs come back with the
// full normalized result set; anything else passes the remote progress
// counters through unmodified.
func (h *Handle) BatchStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	client := h.svc.Client()
	if client == nil {
		abortError(c, http.StatusBadRequest, "API key not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	st, err := batch.New(client).Status(ctx, jobID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, h.friendlyError(err))
		return
	}
	c.JSON(http.StatusOK, st)
}
