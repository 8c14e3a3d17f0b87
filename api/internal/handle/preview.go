package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Preview serves a stored upload copy for the browser's document pane.
func (h *Handle) Preview(c *gin.Context) {
	path, err := h.files.Resolve(c.Param("name"))
	if err != nil {
		abortError(c, http.StatusNotFound, "File not found")
		return
	}
	c.File(path)
}
