package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handle) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"has_api_key": h.svc.HasKey()})
}

func (h *Handle) UpdateSettings(c *gin.Context) {
	apiKey := c.PostForm("api_key")
	if apiKey == "" {
		abortError(c, http.StatusBadRequest, "No API key provided")
		return
	}
	if err := h.svc.Save(apiKey); err != nil {
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
