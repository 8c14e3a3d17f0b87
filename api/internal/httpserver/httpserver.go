package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ocr-web/api/internal/handle"
)

// NewRouter wires the HTTP surface around the handlers.
func NewRouter(h *handle.Handle) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/", h.Index)
	r.GET("/settings", h.GetSettings)
	r.POST("/settings", h.UpdateSettings)
	r.POST("/upload", h.Upload)
	r.POST("/batch-upload", h.BatchUpload)
	r.GET("/batch-status/:job_id", h.BatchStatus)
	r.POST("/download/docx", h.DownloadDOCX)
	r.POST("/download/pdf", h.DownloadPDF)
	r.GET("/preview/:name", h.Preview)

	return r
}
