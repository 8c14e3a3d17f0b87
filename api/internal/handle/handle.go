package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocr-web/api/internal/mistral"
	"ocr-web/api/internal/settings"
	"ocr-web/api/internal/store"
)

// Handle carries the request handlers' shared collaborators: the
// credential service and the upload file store.
type Handle struct {
	svc         *settings.Service
	files       *store.Files
	maxUploadMB int64
}

func New(svc *settings.Service, files *store.Files, maxUploadMB int64) *Handle {
	return &Handle{
		svc:         svc,
		files:       files,
		maxUploadMB: maxUploadMB,
	}
}

func (h *Handle) maxUploadBytes() int64 {
	return h.maxUploadMB << 20
}

func abortError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// friendlyError remaps well-known remote status codes to the messages the
// browser shows; everything else passes the remote message through.
func (h *Handle) friendlyError(err error) string {
	var se *mistral.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests:
			return "Rate limit exceeded. Please wait a moment before trying again."
		case http.StatusUnauthorized:
			return "Invalid API key. Please check your Mistral AI API key."
		case http.StatusRequestEntityTooLarge:
			return h.fileTooLargeMessage()
		}
	}
	return err.Error()
}

func (h *Handle) fileTooLargeMessage() string {
	return fmt.Sprintf("File is too large. Maximum file size is %dMB.", h.maxUploadMB)
}
